package selection

import (
	"testing"
	"time"

	"github.com/hanzidojo/engine/internal/question"
)

func TestTopUpPicksMostRecentUnselected(t *testing.T) {
	now := time.Now()
	batches := map[int32]*batch{
		1: {wordID: 1, scored: []scored{
			{q: &question.Question{ID: "old", CreatedAt: now.Add(-time.Hour)}},
			{q: &question.Question{ID: "new", CreatedAt: now}},
		}},
	}
	got := topUp([]int32{1}, batches, nil, 1)
	if len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("topUp = %+v, want [new]", got)
	}
}

func TestTopUpExcludesAlreadySelected(t *testing.T) {
	now := time.Now()
	already := []*question.Question{{ID: "new"}}
	batches := map[int32]*batch{
		1: {wordID: 1, scored: []scored{
			{q: &question.Question{ID: "old", CreatedAt: now.Add(-time.Hour)}},
			{q: &question.Question{ID: "new", CreatedAt: now}},
		}},
	}
	got := topUp([]int32{1}, batches, already, 5)
	if len(got) != 1 || got[0].ID != "old" {
		t.Fatalf("topUp = %+v, want [old] (new already selected)", got)
	}
}

func TestTopUpZeroNeedReturnsNil(t *testing.T) {
	if got := topUp(nil, nil, nil, 0); got != nil {
		t.Fatalf("topUp with k=0 should return nil, got %v", got)
	}
}
