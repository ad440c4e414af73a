package question

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hanzidojo/engine/internal/store"
)

// toGenericJSON mimics what the store's scan path hands back for a JSON
// column: a generic any value decoded from the column's JSON bytes, not
// the original typed struct.
func toGenericJSON(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestMultiChoiceRowRoundTrip(t *testing.T) {
	txt := "學"
	q := &Question{
		ID:           "q1",
		Kind:         KindFillInVocab,
		AnswerShape:  ShapeMultiChoice,
		TargetWordID: 23416,
		Prompt:       "同?",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		UseCount:     3,
		CorrectCount: 2,
		MultiChoice: &MultiChoicePayload{
			Options:     []Option{{ID: "opt_0", Text: &txt}, {ID: "opt_1", Text: &txt}},
			Answers:     []AnswerTuple{{ChoiceIDs: []string{"opt_0"}}},
			MinChoices:  1,
			MaxChoices:  1,
			StrictOrder: false,
			Randomize:   true,
			DisplayHint: DisplayHint{Type: "list", Rows: 2},
		},
	}
	row := q.ToRow()

	// Simulate the store round trip: JSON columns come back as generic any.
	storeRow := store.Row{
		"id":              row["id"],
		"kind":            row["kind"],
		"answer_shape":    row["answer_shape"],
		"target_word_id":  int64(q.TargetWordID),
		"prompt":          row["prompt"],
		"created_at":      q.CreatedAt,
		"use_count":       int64(q.UseCount),
		"correct_count":   int64(q.CorrectCount),
		"mc_choices":      toGenericJSON(t, row["mc_choices"]),
		"mc_answers":      toGenericJSON(t, row["mc_answers"]),
		"mc_min_choices":  int64(1),
		"mc_max_choices":  int64(1),
		"mc_strict_order": false,
		"mc_randomize":    true,
		"mc_display_hint": toGenericJSON(t, row["mc_display_hint"]),
	}

	got, err := FromRow(storeRow)
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	if got.ID != q.ID || got.Prompt != q.Prompt || got.TargetWordID != q.TargetWordID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.MultiChoice.Options) != 2 || got.MultiChoice.Answers[0].ChoiceIDs[0] != "opt_0" {
		t.Fatalf("multi_choice payload mismatch: %+v", got.MultiChoice)
	}
	if !got.MultiChoice.Randomize || got.MultiChoice.DisplayHint.Rows != 2 {
		t.Fatalf("display hint / flags mismatch: %+v", got.MultiChoice)
	}
}

func TestPairingRowRoundTrip(t *testing.T) {
	q := &Question{
		Kind:         KindPairingCards,
		AnswerShape:  ShapePairing,
		TargetWordID: 1,
		Prompt:       "配對",
		Pairing: &PairingPayload{
			Pairs: []Pair{
				{PairID: "p0", A: PairOption{ID: "p0_a"}, B: PairOption{ID: "p0_b"}},
			},
			DisplayHint: DisplayHint{Type: "grid", Rows: 1, Cols: 2},
		},
	}
	row := q.ToRow()
	storeRow := store.Row{
		"kind":                 row["kind"],
		"answer_shape":         row["answer_shape"],
		"target_word_id":       int64(1),
		"prompt":               row["prompt"],
		"use_count":            int64(0),
		"correct_count":        int64(0),
		"pairs":                toGenericJSON(t, row["pairs"]),
		"pairing_display_hint": toGenericJSON(t, row["pairing_display_hint"]),
	}

	got, err := FromRow(storeRow)
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	if len(got.Pairing.Pairs) != 1 || got.Pairing.Pairs[0].A.ID != "p0_a" {
		t.Fatalf("pairing payload mismatch: %+v", got.Pairing)
	}
}

func TestFromRowRejectsUnknownAnswerShape(t *testing.T) {
	row := store.Row{"answer_shape": "bogus", "kind": "x"}
	if _, err := FromRow(row); err == nil {
		t.Fatal("expected error for unknown answer_shape")
	}
}
