package selection

import (
	"sort"

	"github.com/hanzidojo/engine/internal/question"
)

// topUp implements stage 6's final fallback query (spec §4.8): "any
// non-flagged question across all candidate words, most recent first,
// sufficient to top up". The non-flagged filtering already happened in
// stage 2's stored-procedure fetch, so this just pools every
// not-yet-selected question across the candidate batches and takes the
// k most recent.
func topUp(order []int32, batches map[int32]*batch, already []*question.Question, k int) []*question.Question {
	if k <= 0 {
		return nil
	}
	seen := make(map[string]bool, len(already))
	for _, q := range already {
		seen[q.ID] = true
	}

	var pool []*question.Question
	for _, wordID := range order {
		b, ok := batches[wordID]
		if !ok {
			continue
		}
		for _, s := range b.scored {
			if seen[s.q.ID] {
				continue
			}
			pool = append(pool, s.q)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].CreatedAt.After(pool[j].CreatedAt) })
	if len(pool) > k {
		pool = pool[:k]
	}
	return pool
}
