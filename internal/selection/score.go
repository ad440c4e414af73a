// Package selection implements the adaptive question-selection engine
// (spec §4.8): six stages that turn a user's wrong-word history into
// exactly N questions, mixing recycled questions with freshly generated
// ones and falling back gracefully when either source runs dry.
//
// Grounded on pkg/agents/context_guard.go's stage-pipeline shape
// (beeper-ai-bridge: a sequence of named, independently testable
// transformation steps over a shared accumulator), generalized from a
// single linear pipeline to one with a fan-out stage (5) and a
// conditional-retry stage (6).
package selection

import "math"

// scoreWeights are spec §4.8 stage 3's fixed blend weights:
// score = 0.3*age + 0.2*random + 0.3*usage + 0.2*accuracy.
const (
	weightAge      = 0.3
	weightRandom   = 0.2
	weightUsage    = 0.3
	weightAccuracy = 0.2
)

// neverOutdatedAgeFactor is the fixed midrange age factor exp(-0.5) that
// "never-outdated" kinds (copy_stroke) use instead of true decay, so a
// kind with no natural staleness isn't biased toward either extreme
// (spec §4.8 stage 3).
var neverOutdatedAgeFactor = math.Exp(-0.5)

// ageFactor implements exp(-age_hours / H), or the fixed midrange value
// for never-outdated kinds.
func ageFactor(ageHours, decayHours float64, neverOutdated bool) float64 {
	if neverOutdated {
		return neverOutdatedAgeFactor
	}
	if decayHours <= 0 {
		return 0
	}
	return math.Exp(-ageHours / decayHours)
}

// usageFactor implements 1 - min(use_count/100, 1).
func usageFactor(useCount int) float64 {
	ratio := float64(useCount) / 100.0
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio
}

// accuracyFactor is spec §9's resolved Open Question: config-switchable
// (Config.Selection.AccuracyFactorOverride), defaulting to the spec's
// hard-coded 1 rather than a silent constant buried in code.
func accuracyFactor(override float64) float64 {
	return override
}

// score blends the four factors per spec §4.8 stage 3.
func score(age, random, usage, accuracy float64) float64 {
	return weightAge*age + weightRandom*random + weightUsage*usage + weightAccuracy*accuracy
}

// sigmoid implements p = sigmoid(k * (score - theta)), stage 3's
// good/not_good classification probability.
func sigmoid(s, k, theta float64) float64 {
	return 1.0 / (1.0 + math.Exp(-k*(s-theta)))
}
