package question

import (
	"fmt"
	"math/rand"
	"strings"
)

// FillInVocabOutput is the shape the fill_in_vocab LLM call is asked to
// produce (spec §4.3/§4.4).
type FillInVocabOutput struct {
	TargetChar        string   `json:"target_char"`
	Vocabularies      []string `json:"vocabularies"`
	SimilarCharacters []string `json:"similar_characters"`
}

// AdaptFillInVocab implements spec §4.4's fill_in_vocab adaptor: pick a
// random vocabulary containing target_char, replace its first occurrence
// with "?", and assemble four multi-choice options from
// similar_characters ∪ {target_char}.
func AdaptFillInVocab(out FillInVocabOutput, wordID int32) (*Question, error) {
	candidates := make([]string, 0, len(out.Vocabularies))
	for _, v := range out.Vocabularies {
		if strings.Contains(v, out.TargetChar) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("question: fill_in_vocab: no vocabulary contains target_char %q", out.TargetChar)
	}
	chosen := candidates[rand.Intn(len(candidates))]
	idx := strings.Index(chosen, out.TargetChar)
	prompt := chosen[:idx] + "?" + chosen[idx+len(out.TargetChar):]

	mc, err := fourChoiceMultiChoice(out.TargetChar, out.SimilarCharacters)
	if err != nil {
		return nil, fmt.Errorf("question: fill_in_vocab: %w", err)
	}

	return &Question{
		Kind:         KindFillInVocab,
		AnswerShape:  ShapeMultiChoice,
		TargetWordID: wordID,
		Prompt:       prompt,
		MultiChoice:  mc,
	}, nil
}

// FillInSentenceOutput is the shape the fill_in_sentence LLM call is
// asked to produce.
type FillInSentenceOutput struct {
	TargetChar        string   `json:"target_char"`
	Sentence          string   `json:"sentence"`
	SimilarCharacters []string `json:"similar_characters"`
}

// AdaptFillInSentence implements spec §4.4's fill_in_sentence adaptor:
// replace every occurrence of target_char in sentence with "?", and
// assemble four multi-choice options the same way as fill_in_vocab.
func AdaptFillInSentence(out FillInSentenceOutput, wordID int32) (*Question, error) {
	if !strings.Contains(out.Sentence, out.TargetChar) {
		return nil, fmt.Errorf("question: fill_in_sentence: target_char %q does not appear in sentence", out.TargetChar)
	}
	prompt := strings.ReplaceAll(out.Sentence, out.TargetChar, "?")

	mc, err := fourChoiceMultiChoice(out.TargetChar, out.SimilarCharacters)
	if err != nil {
		return nil, fmt.Errorf("question: fill_in_sentence: %w", err)
	}

	return &Question{
		Kind:         KindFillInSentence,
		AnswerShape:  ShapeMultiChoice,
		TargetWordID: wordID,
		Prompt:       prompt,
		MultiChoice:  mc,
	}, nil
}

// fourChoiceMultiChoice assembles a single-correct-answer, four-option
// multi_choice payload from a correct value and a pool of distractors,
// used by both fill_in_vocab and fill_in_sentence (spec §4.4: "assemble
// four choices as above").
func fourChoiceMultiChoice(correct string, distractors []string) (*MultiChoicePayload, error) {
	if len(distractors) < 3 {
		return nil, fmt.Errorf("need at least 3 similar_characters to assemble four choices, got %d", len(distractors))
	}
	pool := append([]string{correct}, distractors[:3]...)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	options := make([]Option, len(pool))
	var correctID string
	for i, ch := range pool {
		id := fmt.Sprintf("opt_%d", i)
		text := ch
		options[i] = Option{ID: id, Text: &text}
		if ch == correct {
			correctID = id
		}
	}

	return &MultiChoicePayload{
		Options:     options,
		Answers:     []AnswerTuple{{ChoiceIDs: []string{correctID}}},
		MinChoices:  1,
		MaxChoices:  1,
		StrictOrder: false,
		Randomize:   true,
		DisplayHint: DisplayHint{Type: "list", Rows: len(options)},
	}, nil
}

// PairingCardsOutput is the shape the pairing_cards LLM call is asked to
// produce.
type PairingCardsOutput struct {
	TargetChar string   `json:"target_char"`
	N          int      `json:"n"`
	Words      []string `json:"words"`
}

// AdaptPairingCards implements spec §4.4's pairing_cards adaptor: split
// each two-character word into its two halves, each forming one pairing
// option in a pair; words of any other length are discarded.
func AdaptPairingCards(out PairingCardsOutput, wordID int32) (*Question, error) {
	pairs := make([]Pair, 0, len(out.Words))
	for i, w := range out.Words {
		runes := []rune(w)
		if len(runes) != 2 {
			continue
		}
		a := string(runes[0])
		b := string(runes[1])
		pairs = append(pairs, Pair{
			PairID: fmt.Sprintf("pair_%d", i),
			A:      PairOption{ID: fmt.Sprintf("pair_%d_a", i), Text: &a},
			B:      PairOption{ID: fmt.Sprintf("pair_%d_b", i), Text: &b},
		})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("question: pairing_cards: no two-character words to pair")
	}

	return &Question{
		Kind:         KindPairingCards,
		AnswerShape:  ShapePairing,
		TargetWordID: wordID,
		Prompt:       fmt.Sprintf("配對: %s", out.TargetChar),
		Pairing: &PairingPayload{
			Pairs:       pairs,
			DisplayHint: DisplayHint{Type: "grid", Rows: len(pairs), Cols: 2},
		},
	}, nil
}
