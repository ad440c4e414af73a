package selection

import (
	"context"
	"math/rand"

	"github.com/hanzidojo/engine/internal/qgen"
	"github.com/hanzidojo/engine/internal/question"
)

// attemptKey identifies a (word, kind) pair for stage 6's dedup set
// (spec §9 resolved Open Question #4: once a pair has been retried once
// and still failed, it is never attempted again in the same selection
// call, regardless of which coin-flip branch reaches it second).
type attemptKey struct {
	wordID int32
	kind   question.Kind
}

// runFallback implements stage 6 (spec §4.8): for every (word, kind)
// stage 5 failed or dropped, flip a fair coin. Heads retries generation
// once, recycling the word's best not_good question if the retry also
// fails. Tails recycles first, attempting generation only if the word
// has no not_good question.
func runFallback(ctx context.Context, gen *qgen.Service, userID string, failed []genTask, batches map[int32]*batch, rng *rand.Rand) []*question.Question {
	attempted := make(map[attemptKey]bool, len(failed))
	var out []*question.Question

	for _, t := range failed {
		key := attemptKey{t.wordID, t.kind}
		b := batches[t.wordID]

		if rng.Intn(2) == 0 {
			if q := tryGenerateOnce(ctx, gen, userID, t, attempted, key); q != nil {
				out = append(out, q)
				continue
			}
			if recycled := recycleNotGood(b); recycled != nil {
				out = append(out, recycled)
			}
			continue
		}

		if recycled := recycleNotGood(b); recycled != nil {
			out = append(out, recycled)
			continue
		}
		if q := tryGenerateOnce(ctx, gen, userID, t, attempted, key); q != nil {
			out = append(out, q)
		}
	}
	return out
}

func tryGenerateOnce(ctx context.Context, gen *qgen.Service, userID string, t genTask, attempted map[attemptKey]bool, key attemptKey) *question.Question {
	if attempted[key] {
		return nil
	}
	attempted[key] = true

	q, err := gen.GenerateAndSave(ctx, userID, t.char(), t.kind)
	if err != nil || q.TargetWordID != t.wordID {
		return nil
	}
	return q
}

func recycleNotGood(b *batch) *question.Question {
	if b == nil {
		return nil
	}
	if s := b.bestNotGood(); s != nil {
		return s.q
	}
	return nil
}
