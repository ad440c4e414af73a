package selection

import (
	"testing"

	"github.com/hanzidojo/engine/internal/question"
)

func TestCollectGoodExistingCapsNeverOutdated(t *testing.T) {
	batches := map[int32]*batch{
		1: {wordID: 1, scored: []scored{{q: &question.Question{ID: "q1", TargetWordID: 1, Kind: question.KindCopyStroke}, score: 0.9, good: true}}},
		2: {wordID: 2, scored: []scored{{q: &question.Question{ID: "q2", TargetWordID: 2, Kind: question.KindCopyStroke}, score: 0.9, good: true}}},
		3: {wordID: 3, scored: []scored{{q: &question.Question{ID: "q3", TargetWordID: 3, Kind: question.KindFillInVocab}, score: 0.9, good: true}}},
	}
	order := []int32{1, 2, 3}

	selected, served := collectGoodExisting(order, batches, 10, 1)
	if len(selected) != 2 {
		t.Fatalf("expected 2 selected (1 copy_stroke capped, 1 fill_in_vocab uncapped), got %d", len(selected))
	}
	if !served[1] || served[2] || !served[3] {
		t.Fatalf("expected words 1 and 3 served, word 2's copy_stroke dropped by the cap; got %v", served)
	}
}

func TestCollectGoodExistingStopsAtN(t *testing.T) {
	batches := map[int32]*batch{
		1: {wordID: 1, scored: []scored{{q: &question.Question{ID: "q1", TargetWordID: 1, Kind: question.KindFillInVocab}, score: 0.9, good: true}}},
		2: {wordID: 2, scored: []scored{{q: &question.Question{ID: "q2", TargetWordID: 2, Kind: question.KindFillInVocab}, score: 0.9, good: true}}},
	}
	selected, _ := collectGoodExisting([]int32{1, 2}, batches, 1, 3)
	if len(selected) != 1 {
		t.Fatalf("expected exactly 1 selected (n=1), got %d", len(selected))
	}
}

func TestCollectGoodExistingSkipsBatchesWithNoGood(t *testing.T) {
	batches := map[int32]*batch{
		1: {wordID: 1, scored: []scored{{q: &question.Question{ID: "q1", TargetWordID: 1}, score: 0.9, good: false}}},
	}
	selected, served := collectGoodExisting([]int32{1}, batches, 5, 3)
	if len(selected) != 0 || served[1] {
		t.Fatalf("expected nothing collected from an all-not_good batch, got %v served=%v", selected, served)
	}
}
