package selection

import (
	"math/rand"
	"time"

	"github.com/hanzidojo/engine/internal/config"
	"github.com/hanzidojo/engine/internal/question"
)

// classify implements stage 3 (spec §4.8): score every question in every
// batch and Bernoulli-classify it as good/not_good from a sigmoid of the
// score. Mutates each batch's scored entries in place.
func classify(batches map[int32]*batch, cfg config.SelectionConfig, now time.Time, rng *rand.Rand) {
	for _, b := range batches {
		for i := range b.scored {
			s := &b.scored[i]
			classifyOne(s, cfg, now, rng)
		}
	}
}

func classifyOne(s *scored, cfg config.SelectionConfig, now time.Time, rng *rand.Rand) {
	ageHours := now.Sub(s.q.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	age := ageFactor(ageHours, cfg.DecayHours, question.IsNeverOutdated(s.q.Kind))
	usage := usageFactor(s.q.UseCount)
	accuracy := accuracyFactor(cfg.AccuracyFactorOverride)
	random := rng.Float64()

	s.score = score(age, random, usage, accuracy)
	p := sigmoid(s.score, cfg.SigmoidSteepness, cfg.SigmoidThreshold)
	s.good = rng.Float64() < p
}
