package selection

import "github.com/hanzidojo/engine/internal/question"

// scored pairs a stage-2-fetched question with stage 3's classification.
type scored struct {
	q     *question.Question
	score float64
	good  bool
}

// batch is stage 2's per-word result set, scored and classified in place
// by stage 3 (spec §4.8: "Result grouped by word id").
type batch struct {
	wordID int32
	scored []scored
}

// bestGood returns the highest-scored "good" question in the batch, or
// nil (spec §4.8 stage 4: "from each batch take the highest-scored good
// question, if any").
func (b *batch) bestGood() *scored {
	return b.best(true)
}

// bestNotGood returns the highest-scored "not_good" question in the
// batch, or nil (spec §4.8 stage 6's recycle fallback).
func (b *batch) bestNotGood() *scored {
	return b.best(false)
}

func (b *batch) best(good bool) *scored {
	var winner *scored
	for i := range b.scored {
		s := &b.scored[i]
		if s.good != good {
			continue
		}
		if winner == nil || s.score > winner.score {
			winner = s
		}
	}
	return winner
}

// mostRecent returns the batch's most recently created question,
// ignoring classification (spec §4.8 stage 6's final top-up query: "any
// non-flagged question across all candidate words, most recent first").
func (b *batch) mostRecent() *scored {
	var winner *scored
	for i := range b.scored {
		s := &b.scored[i]
		if winner == nil || s.q.CreatedAt.After(winner.q.CreatedAt) {
			winner = s
		}
	}
	return winner
}
