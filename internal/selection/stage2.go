package selection

import (
	"context"

	"github.com/hanzidojo/engine/internal/question"
	"github.com/hanzidojo/engine/internal/store"
)

// fetchBatches implements stage 2 (spec §4.8): one round-trip lateral
// join returning the most recent K non-flagged questions per candidate
// word, grouped by word id. Rows this engine can't decode (a data-shape
// mismatch from a row some other path wrote) are skipped and logged by
// the caller rather than failing the whole selection call.
func fetchBatches(ctx context.Context, db *store.DB, wordIDs []int32, limitPerWord int) (map[int32]*batch, []error) {
	rows, err := db.GetRecentQuestionsForWords(ctx, wordIDs, limitPerWord)
	if err != nil {
		return nil, []error{err}
	}

	byWord := make(map[int32]*batch, len(wordIDs))
	for _, id := range wordIDs {
		byWord[id] = &batch{wordID: id}
	}

	var decodeErrs []error
	for _, row := range rows {
		q, err := question.FromRow(row)
		if err != nil {
			decodeErrs = append(decodeErrs, err)
			continue
		}
		b, ok := byWord[q.TargetWordID]
		if !ok {
			continue
		}
		b.scored = append(b.scored, scored{q: q})
	}
	return byWord, decodeErrs
}
