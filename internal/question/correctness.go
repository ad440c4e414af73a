package question

// IsCorrectMultiChoice implements the two multi-choice correctness rules
// from spec §4.4: strict-order questions require an exact sequence match
// against one of the canonical answers; non-strict questions only require
// the submitted set to match one answer's set, in any order.
func IsCorrectMultiChoice(p *MultiChoicePayload, submitted []string) bool {
	for _, ans := range p.Answers {
		if p.StrictOrder {
			if sequenceEqual(ans.ChoiceIDs, submitted) {
				return true
			}
		} else if setEqual(ans.ChoiceIDs, submitted) {
			return true
		}
	}
	return false
}

func sequenceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func setEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}

// IsCorrectPairing implements the pairing correctness rule from spec
// §4.4: the multiset of option-id groupings in the submitted pairs must
// equal that of the canonical pairs, ignoring pair ids and the order of
// both the pairs themselves and the two options within each pair.
func IsCorrectPairing(p *PairingPayload, submitted [][2]string) bool {
	if len(submitted) != len(p.Pairs) {
		return false
	}
	want := make(map[[2]string]int, len(p.Pairs))
	for _, pair := range p.Pairs {
		want[canonicalGrouping(pair.A.ID, pair.B.ID)]++
	}
	for _, sub := range submitted {
		key := canonicalGrouping(sub[0], sub[1])
		want[key]--
		if want[key] < 0 {
			return false
		}
	}
	for _, remaining := range want {
		if remaining != 0 {
			return false
		}
	}
	return true
}

// canonicalGrouping orders two option ids so that {A,B} and {B,A} hash to
// the same key, matching "pair-ids and ordering ignored" (spec §4.4).
func canonicalGrouping(a, b string) [2]string {
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// IsCorrectWriting implements the writing correctness rule from spec
// §4.4: correctness is exactly the external handwriting-recognition
// collaborator's verdict, passed straight through. Kept as a named
// function (rather than inlined at call sites) so the submission path
// reads the same way for all three answer shapes.
func IsCorrectWriting(recognizedAsCorrect bool) bool {
	return recognizedAsCorrect
}
