// Package question is the canonical in-memory question representation
// (spec §3, §4.4): a tagged union across the three answer shapes
// (multi_choice, writing, pairing), its conversion to and from the store's
// flat row shape, the LLM-output adaptors, and the correctness predicates
// used by the submission path.
//
// Grounded on pkg/agents/tools's typed-argument-struct convention
// (beeper-ai-bridge) for the per-kind payloads, generalized from a single
// tool-call argument shape to a tagged variant with one populated payload
// per question.
package question

import "time"

// Kind is the question's generation kind.
type Kind string

const (
	KindPairingCards           Kind = "pairing_cards"
	KindMatchPic               Kind = "match_pic"
	KindCombineRadical         Kind = "combine_radical"
	KindCombineRadicalWithHint Kind = "combine_radical_with_hint"
	KindFillInSentence         Kind = "fill_in_sentence"
	KindListening              Kind = "listening"
	KindFillInVocab            Kind = "fill_in_vocab"
	KindIdentMirrored          Kind = "ident_mirrored"
	KindIdentWrong             Kind = "ident_wrong"
	KindCopyStroke             Kind = "copy_stroke"
	KindFillInRadical          Kind = "fill_in_radical"
)

// AnswerShape is the question's answer-evaluation shape.
type AnswerShape string

const (
	ShapeMultiChoice AnswerShape = "multi_choice"
	ShapeWriting     AnswerShape = "writing"
	ShapePairing     AnswerShape = "pairing"
)

// neverOutdatedKinds never go stale for scoring purposes (spec §4.8 stage
// 3: "currently only copy_stroke").
var neverOutdatedKinds = map[Kind]struct{}{
	KindCopyStroke: {},
}

// IsNeverOutdated reports whether k is exempt from age-based scoring decay.
func IsNeverOutdated(k Kind) bool {
	_, ok := neverOutdatedKinds[k]
	return ok
}

// GivenMaterial is the optional text/image(s)/sound context shown alongside
// the prompt. Images is a slice because some kinds require more than one
// (ident_mirrored, combine_radical_with_hint need at least two; fill_in_radical
// needs exactly one).
type GivenMaterial struct {
	Text   *string  `json:"text,omitempty"`
	Images []string `json:"images,omitempty"`
	Sound  *string  `json:"sound,omitempty"`
}

// DisplayHint tells the client how to lay out the question's options.
type DisplayHint struct {
	Type string `json:"type"` // "grid" or "list"
	Rows int    `json:"rows"`
	Cols int    `json:"cols,omitempty"` // only meaningful for "grid"
}

// Option is a single selectable multi-choice option.
type Option struct {
	ID       string  `json:"id"`
	Text     *string `json:"text,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// AnswerTuple is one acceptable answer: an ordered or unordered set of
// option ids, depending on the question's StrictOrder flag.
type AnswerTuple struct {
	ChoiceIDs []string `json:"choice_ids"`
}

// MultiChoicePayload is the kind-specific payload for ShapeMultiChoice
// questions (spec §3).
type MultiChoicePayload struct {
	Options     []Option      `json:"options"`
	Answers     []AnswerTuple `json:"answers"`
	MinChoices  int           `json:"min_choices"`
	MaxChoices  int           `json:"max_choices"`
	StrictOrder bool          `json:"strict_order"`
	Randomize   bool          `json:"randomize"`
	DisplayHint DisplayHint   `json:"display_hint"`
}

// WritingPayload is the kind-specific payload for ShapeWriting questions.
type WritingPayload struct {
	TargetChar         string  `json:"target_char"`
	SubmitURL          string  `json:"submit_url"`
	BackgroundImageURL *string `json:"background_image_url,omitempty"`
}

// PairOption is one side of a pairing-question pair.
type PairOption struct {
	ID       string  `json:"id"`
	Text     *string `json:"text,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Pair is one matched pair within a pairing question. Option ids are
// unique globally within the question (spec §3 invariant).
type Pair struct {
	PairID string     `json:"pair_id"`
	A      PairOption `json:"a"`
	B      PairOption `json:"b"`
}

// PairingPayload is the kind-specific payload for ShapePairing questions.
type PairingPayload struct {
	Pairs       []Pair      `json:"pairs"`
	DisplayHint DisplayHint `json:"display_hint"`
}

// Question is the canonical polymorphic representation (spec §3): exactly
// one of MultiChoice, Writing, Pairing is populated, selected by
// AnswerShape.
type Question struct {
	ID            string
	Kind          Kind
	AnswerShape   AnswerShape
	TargetWordID  int32
	Prompt        string
	GivenMaterial *GivenMaterial
	CreatedAt     time.Time
	UseCount      int
	CorrectCount  int

	MultiChoice *MultiChoicePayload
	Writing     *WritingPayload
	Pairing     *PairingPayload
}
