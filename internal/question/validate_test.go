package question

import "testing"

func baseMultiChoice() *Question {
	return &Question{
		Kind:        KindFillInVocab,
		AnswerShape: ShapeMultiChoice,
		MultiChoice: &MultiChoicePayload{
			Options:    []Option{{ID: "a"}, {ID: "b"}},
			Answers:    []AnswerTuple{{ChoiceIDs: []string{"a"}}},
			MinChoices: 1,
			MaxChoices: 1,
		},
	}
}

func TestValidateRejectsMultiplePayloads(t *testing.T) {
	q := baseMultiChoice()
	q.Writing = &WritingPayload{TargetChar: "x", SubmitURL: "http://x"}
	if err := q.Validate(); err == nil {
		t.Fatal("expected error when two payloads are populated")
	}
}

func TestValidateRejectsMinMaxViolation(t *testing.T) {
	q := baseMultiChoice()
	q.MultiChoice.MinChoices = 2
	q.MultiChoice.MaxChoices = 1
	if err := q.Validate(); err == nil {
		t.Fatal("expected error for max_choices < min_choices")
	}
}

func TestValidateRejectsDuplicateOptionIDs(t *testing.T) {
	q := baseMultiChoice()
	q.MultiChoice.Options = []Option{{ID: "a"}, {ID: "a"}}
	if err := q.Validate(); err == nil {
		t.Fatal("expected error for duplicate option ids")
	}
}

func TestValidateRejectsDanglingAnswerReference(t *testing.T) {
	q := baseMultiChoice()
	q.MultiChoice.Answers = []AnswerTuple{{ChoiceIDs: []string{"nonexistent"}}}
	if err := q.Validate(); err == nil {
		t.Fatal("expected error for answer referencing unknown option id")
	}
}

func TestValidateRequiresTwoGivenImagesForIdentMirrored(t *testing.T) {
	q := baseMultiChoice()
	q.Kind = KindIdentMirrored
	q.GivenMaterial = &GivenMaterial{Images: []string{"one.png"}}
	if err := q.Validate(); err == nil {
		t.Fatal("expected error: ident_mirrored requires at least two given images")
	}
}

func TestValidateRequiresExactlyOneGivenImageForFillInRadical(t *testing.T) {
	q := baseMultiChoice()
	q.Kind = KindFillInRadical
	q.GivenMaterial = &GivenMaterial{Images: []string{"one.png", "two.png"}}
	if err := q.Validate(); err == nil {
		t.Fatal("expected error: fill_in_radical requires exactly one given image")
	}
}

func TestValidateRequiresStrictOrderForCombineRadical(t *testing.T) {
	q := baseMultiChoice()
	q.Kind = KindCombineRadical
	q.MultiChoice.StrictOrder = false
	if err := q.Validate(); err == nil {
		t.Fatal("expected error: combine_radical requires strict_order")
	}
}

func TestValidateRejectsDuplicatePairingIDs(t *testing.T) {
	q := &Question{
		Kind:        KindPairingCards,
		AnswerShape: ShapePairing,
		Pairing: &PairingPayload{
			Pairs: []Pair{
				{PairID: "p1", A: PairOption{ID: "a1"}, B: PairOption{ID: "b1"}},
				{PairID: "p1", A: PairOption{ID: "a2"}, B: PairOption{ID: "b2"}},
			},
		},
	}
	if err := q.Validate(); err == nil {
		t.Fatal("expected error for duplicate pair ids")
	}
}

func TestValidateAcceptsWellFormedQuestion(t *testing.T) {
	q := baseMultiChoice()
	if err := q.Validate(); err != nil {
		t.Fatalf("expected well-formed question to validate, got %v", err)
	}
}
