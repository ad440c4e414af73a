package selection

import (
	"context"
	"math/rand"
	"time"

	"github.com/hanzidojo/engine/internal/config"
	"github.com/hanzidojo/engine/internal/word"
	"github.com/hanzidojo/engine/internal/wrongword"
)

// wrongWordFetchLimit bounds stage 1's read of the user's wrong-word
// history before sampling down to cfg.MaxWrongWords; it only needs to be
// comfortably larger than any realistic MaxWrongWords so the weighted
// sample has a real population to draw from.
const wrongWordFetchLimit = 500

// priority implements spec §4.8 stage 1's weight:
// priority = hours_since_last_wrong*w_t + wrong_count*w_c + jitter.
func priority(hoursSinceLastWrong float64, wrongCount int, weightTime, weightCount, jitter float64) float64 {
	return hoursSinceLastWrong*weightTime + float64(wrongCount)*weightCount + jitter
}

// priorityForEdge computes edge's priority at instant now, drawing its
// own Gaussian jitter from rng (spec §4.8: "jitter is normal(mu, sigma),
// both configurable").
func priorityForEdge(edge *wrongword.Edge, now time.Time, cfg config.SelectionConfig, rng *rand.Rand) float64 {
	hours := now.Sub(edge.LastWrongAt).Hours()
	if hours < 0 {
		hours = 0
	}
	jitter := rng.NormFloat64()*cfg.JitterStdDev + cfg.JitterMean
	return priority(hours, edge.WrongCount, cfg.PriorityWeightTime, cfg.PriorityWeightCount, jitter)
}

// selectRevisionWords implements stage 1 (spec §4.8): fetch the user's
// wrong-word edges, assign each a priority, augment with random catalog
// words if short of cfg.MaxWrongWords (priority 0), and sample down to
// cfg.MaxWrongWords (weighted by priority) if there are more than
// needed. Fail-soft: a user with zero wrong-word edges falls straight
// through to "augment with random catalog words", which is pure
// random-word filler, per spec.
func selectRevisionWords(ctx context.Context, words *word.Service, wrongwords *wrongword.Service, userID string, cfg config.SelectionConfig, now time.Time, rng *rand.Rand) ([]int32, error) {
	edges, err := wrongwords.ListForUser(ctx, userID, wrongWordFetchLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]int32, len(edges))
	weights := make([]float64, len(edges))
	for i, e := range edges {
		ids[i] = e.WordID
		weights[i] = priorityForEdge(e, now, cfg, rng)
	}

	if len(ids) < cfg.MaxWrongWords {
		filler, err := words.GetRandom(ctx, cfg.MaxWrongWords-len(ids))
		if err != nil {
			return nil, err
		}
		for _, w := range filler {
			ids = append(ids, w.ID)
			weights = append(weights, 0)
		}
	}

	if len(ids) <= cfg.MaxWrongWords {
		return ids, nil
	}

	return weightedSampleWithoutReplacement(rng, ids, shiftToNonNegative(weights), cfg.MaxWrongWords), nil
}
