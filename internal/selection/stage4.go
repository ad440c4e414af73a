package selection

import (
	"github.com/hanzidojo/engine/internal/question"
)

// collectGoodExisting implements stage 4 (spec §4.8): walk the batches in
// their (already shuffled) order, taking the highest-scored "good"
// question from each, capped so never-outdated kinds (copy_stroke) don't
// dominate the output. Returns the collected questions and the set of
// word ids they came from, so stage 5 knows which words still need
// generation.
func collectGoodExisting(order []int32, batches map[int32]*batch, n int, neverOutdatedCap int) ([]*question.Question, map[int32]bool) {
	var out []*question.Question
	served := make(map[int32]bool, len(order))
	neverOutdatedUsed := 0

	for _, wordID := range order {
		if len(out) >= n {
			break
		}
		b, ok := batches[wordID]
		if !ok {
			continue
		}
		best := b.bestGood()
		if best == nil {
			continue
		}
		if question.IsNeverOutdated(best.q.Kind) {
			if neverOutdatedUsed >= neverOutdatedCap {
				continue
			}
			neverOutdatedUsed++
		}
		out = append(out, best.q)
		served[wordID] = true
	}
	return out, served
}
