package selection

import (
	"math"
	"testing"
)

func TestAgeFactorDecays(t *testing.T) {
	fresh := ageFactor(0, 168, false)
	if math.Abs(fresh-1.0) > 1e-9 {
		t.Fatalf("age_factor at 0 hours = %v, want 1", fresh)
	}
	old := ageFactor(168, 168, false)
	if math.Abs(old-math.Exp(-1)) > 1e-9 {
		t.Fatalf("age_factor at H hours = %v, want exp(-1)", old)
	}
}

func TestAgeFactorNeverOutdated(t *testing.T) {
	got := ageFactor(10000, 168, true)
	want := math.Exp(-0.5)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("never-outdated age_factor = %v, want %v regardless of age", got, want)
	}
}

func TestUsageFactorClampsAtOne(t *testing.T) {
	if got := usageFactor(0); math.Abs(got-1) > 1e-9 {
		t.Fatalf("usage_factor(0) = %v, want 1", got)
	}
	if got := usageFactor(100); math.Abs(got-0) > 1e-9 {
		t.Fatalf("usage_factor(100) = %v, want 0", got)
	}
	if got := usageFactor(500); got != 0 {
		t.Fatalf("usage_factor(500) = %v, want 0 (clamped)", got)
	}
}

func TestAccuracyFactorPassesThroughOverride(t *testing.T) {
	if got := accuracyFactor(1.0); got != 1.0 {
		t.Fatalf("accuracyFactor(1.0) = %v, want 1.0", got)
	}
	if got := accuracyFactor(0.42); got != 0.42 {
		t.Fatalf("accuracyFactor(0.42) = %v, want 0.42", got)
	}
}

func TestScoreBlendsWeights(t *testing.T) {
	got := score(1, 1, 1, 1)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("score(1,1,1,1) = %v, want 1 (weights sum to 1)", got)
	}
	got = score(0, 0, 0, 0)
	if got != 0 {
		t.Fatalf("score(0,0,0,0) = %v, want 0", got)
	}
}

func TestSigmoidMidpoint(t *testing.T) {
	got := sigmoid(0.5, 10, 0.5)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("sigmoid at threshold = %v, want 0.5", got)
	}
	if sigmoid(1.0, 10, 0.5) <= 0.5 {
		t.Fatal("sigmoid above threshold should exceed 0.5")
	}
	if sigmoid(0.0, 10, 0.5) >= 0.5 {
		t.Fatal("sigmoid below threshold should be under 0.5")
	}
}
