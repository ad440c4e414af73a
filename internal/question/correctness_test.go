package question

import "testing"

func TestIsCorrectMultiChoiceStrictOrder(t *testing.T) {
	p := &MultiChoicePayload{
		StrictOrder: true,
		Answers: []AnswerTuple{
			{ChoiceIDs: []string{"a", "b"}},
		},
	}
	if !IsCorrectMultiChoice(p, []string{"a", "b"}) {
		t.Fatal("expected exact sequence match to be correct")
	}
	if IsCorrectMultiChoice(p, []string{"b", "a"}) {
		t.Fatal("expected reordered sequence to be incorrect under strict order")
	}
}

func TestIsCorrectMultiChoiceNonStrict(t *testing.T) {
	p := &MultiChoicePayload{
		StrictOrder: false,
		Answers: []AnswerTuple{
			{ChoiceIDs: []string{"a", "b"}},
		},
	}
	if !IsCorrectMultiChoice(p, []string{"b", "a"}) {
		t.Fatal("expected set match regardless of order to be correct")
	}
	if IsCorrectMultiChoice(p, []string{"a", "c"}) {
		t.Fatal("expected mismatched set to be incorrect")
	}
}

// TestIsCorrectPairing is scenario 4 from spec §8: canonical pairs
// [(A1,B1),(A2,B2)], submitted [(B2,A2),(A1,B1)] should be correct.
func TestIsCorrectPairing(t *testing.T) {
	p := &PairingPayload{
		Pairs: []Pair{
			{PairID: "p1", A: PairOption{ID: "A1"}, B: PairOption{ID: "B1"}},
			{PairID: "p2", A: PairOption{ID: "A2"}, B: PairOption{ID: "B2"}},
		},
	}
	submitted := [][2]string{{"B2", "A2"}, {"A1", "B1"}}
	if !IsCorrectPairing(p, submitted) {
		t.Fatal("expected reordered, pair-id-agnostic pairing to be correct")
	}
}

func TestIsCorrectPairingMismatch(t *testing.T) {
	p := &PairingPayload{
		Pairs: []Pair{
			{PairID: "p1", A: PairOption{ID: "A1"}, B: PairOption{ID: "B1"}},
			{PairID: "p2", A: PairOption{ID: "A2"}, B: PairOption{ID: "B2"}},
		},
	}
	submitted := [][2]string{{"A1", "B2"}, {"A2", "B1"}}
	if IsCorrectPairing(p, submitted) {
		t.Fatal("expected crossed pairing to be incorrect")
	}
}

func TestIsCorrectPairingWrongCount(t *testing.T) {
	p := &PairingPayload{
		Pairs: []Pair{
			{PairID: "p1", A: PairOption{ID: "A1"}, B: PairOption{ID: "B1"}},
		},
	}
	if IsCorrectPairing(p, [][2]string{}) {
		t.Fatal("expected empty submission to be incorrect")
	}
}

func TestIsCorrectWriting(t *testing.T) {
	if !IsCorrectWriting(true) {
		t.Fatal("expected true verdict to be correct")
	}
	if IsCorrectWriting(false) {
		t.Fatal("expected false verdict to be incorrect")
	}
}
