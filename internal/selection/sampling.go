package selection

import (
	"math"
	"math/rand"
	"sort"
)

// weightedSampleWithoutReplacement picks k of ids without replacement,
// using weights as sampling weights (spec §4.8 stage 1: "sample without
// replacement using priorities as weights (shift to non-negative; if all
// zero, uniform)"). Shifting to non-negative is the caller's job for the
// "priorities as weights" wording — this function assumes weights are
// already non-negative and treats an all-zero input as uniform.
//
// Uses the Efraimidis-Spirakis A-ES algorithm (draw key_i =
// u_i^(1/w_i), keep the k largest keys): no weighted-reservoir-sampling
// library appears anywhere in the pack, and the algorithm is a handful of
// lines of stdlib math/rand + sort, so there's nothing to adopt.
func weightedSampleWithoutReplacement(rng *rand.Rand, ids []int32, weights []float64, k int) []int32 {
	if k >= len(ids) {
		out := append([]int32(nil), ids...)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	if k <= 0 {
		return nil
	}

	allZero := true
	for _, w := range weights {
		if w != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		perm := rng.Perm(len(ids))
		out := make([]int32, k)
		for i := 0; i < k; i++ {
			out[i] = ids[perm[i]]
		}
		return out
	}

	type keyed struct {
		id  int32
		key float64
	}
	kvs := make([]keyed, len(ids))
	for i, id := range ids {
		w := weights[i]
		if w <= 0 {
			w = 1e-9
		}
		u := rng.Float64()
		if u <= 0 {
			u = 1e-9
		}
		kvs[i] = keyed{id: id, key: math.Pow(u, 1.0/w)}
	}
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].key > kvs[j].key })

	out := make([]int32, k)
	for i := 0; i < k; i++ {
		out[i] = kvs[i].id
	}
	return out
}

// shiftToNonNegative implements stage 1's "shift to non-negative": if the
// minimum weight is negative, add its magnitude to every weight so the
// smallest becomes zero.
func shiftToNonNegative(weights []float64) []float64 {
	if len(weights) == 0 {
		return weights
	}
	min := weights[0]
	for _, w := range weights {
		if w < min {
			min = w
		}
	}
	if min >= 0 {
		return weights
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w - min
	}
	return out
}
