// Package wrongword is the user wrong-word edge service (spec §4.6): the
// record of which characters a given user has gotten wrong, and how many
// times.
//
// Grounded on pkg/connector/memory_manager.go's get-or-create-then-mutate
// pattern (beeper-ai-bridge), generalized from a single memory-file upsert
// to a race-tolerant batch upsert using the catalog's unique-constraint-
// then-retry-as-increment strategy (design note "Race resolution").
package wrongword

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/engerr"
	"github.com/hanzidojo/engine/internal/store"
	"github.com/hanzidojo/engine/internal/word"
)

const table = "past_wrong_words"

// Edge is one (user, word) wrong-answer record.
type Edge struct {
	UserID        string
	WordID        int32
	WrongCount    int
	LastWrongAt   time.Time
	WrongImageURL string
}

// Service is the wrong-word edge service.
type Service struct {
	db    *store.DB
	words *word.Service
	log   zerolog.Logger
}

// New builds a Service.
func New(db *store.DB, words *word.Service, log zerolog.Logger) *Service {
	return &Service{db: db, words: words, log: log.With().Str("component", "wrongword").Logger()}
}

// Add implements spec §4.6's add(user, char): create the catalog word if
// missing, then upsert the (user, word) edge — insert with count 1 if
// new, otherwise increment count and stamp last_wrong_at. An insert that
// loses a first-sighting race to the unique constraint is retried as an
// increment.
func (s *Service) Add(ctx context.Context, userID, char string) (*Edge, error) {
	w, err := s.words.CreateIfMissing(ctx, char)
	if err != nil {
		return nil, err
	}

	existing, err := s.db.GetExistingWrongWordIDs(ctx, userID, []int32{w.ID})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if err := s.db.IncrementWrongCountForUser(ctx, userID, []int32{w.ID}); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.db.Insert(ctx, table, store.Row{
			"user_id":     userID,
			"word_id":     w.ID,
			"wrong_count": 1,
		}); err != nil {
			if engerr.KindOf(err) != engerr.KindConstraint {
				return nil, err
			}
			if err := s.db.IncrementWrongCountForUser(ctx, userID, []int32{w.ID}); err != nil {
				return nil, err
			}
		}
	}

	rows, err := s.db.SelectWhere(ctx, table, store.Conditions{"user_id": userID, "word_id": w.ID}, store.SelectOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return fromRow(rows[0]), nil
}

// WrongAddInput is one entry of batch_add's input list.
type WrongAddInput struct {
	Char     string
	ImageURL string
}

// BatchAdd implements spec §4.6's batch_add(user, [{word, image_url}...]):
// create any missing catalog words, split the set into the subset that
// already has an edge (incremented via a single stored-procedure call)
// and the subset that doesn't (inserted row by row, a row that loses a
// first-sighting race to the unique constraint being retried as an
// increment), and return the merged post-state for every input word.
func (s *Service) BatchAdd(ctx context.Context, userID string, inputs []WrongAddInput) ([]*Edge, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	wordIDs := make([]int32, len(inputs))
	imageByWordID := make(map[int32]string, len(inputs))
	for i, in := range inputs {
		w, err := s.words.CreateIfMissing(ctx, in.Char)
		if err != nil {
			return nil, err
		}
		wordIDs[i] = w.ID
		imageByWordID[w.ID] = in.ImageURL
	}

	existingIDs, err := s.db.GetExistingWrongWordIDs(ctx, userID, wordIDs)
	if err != nil {
		return nil, err
	}
	toIncrement, newIDs := partition(wordIDs, existingIDs)
	toInsert := make([]store.Row, 0, len(newIDs))
	for _, id := range newIDs {
		row := store.Row{
			"user_id":     userID,
			"word_id":     id,
			"wrong_count": 1,
		}
		if img := imageByWordID[id]; img != "" {
			row["wrong_image_url"] = img
		}
		toInsert = append(toInsert, row)
	}

	if len(toIncrement) > 0 {
		if err := s.db.IncrementWrongCountForUser(ctx, userID, toIncrement); err != nil {
			return nil, err
		}
	}
	for _, row := range toInsert {
		if _, err := s.db.Insert(ctx, table, row); err != nil {
			if engerr.KindOf(err) != engerr.KindConstraint {
				return nil, err
			}
			if err := s.db.IncrementWrongCountForUser(ctx, userID, []int32{row["word_id"].(int32)}); err != nil {
				return nil, err
			}
		}
	}

	return s.getAll(ctx, userID, wordIDs)
}

// ListForUser returns up to limit of userID's wrong-word edges, most
// recently wrong first (spec §4.8 stage 1: "fetch the user's wrong-word
// edges"). A thin wrapper over the paginated stored-procedure read spec
// §6 lists alongside batch_add.
func (s *Service) ListForUser(ctx context.Context, userID string, limit int) ([]*Edge, error) {
	rows, err := s.db.GetPastWrongWordsByUser(ctx, userID, limit, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*Edge, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out, nil
}

// partition splits wordIDs (preserving order, de-duplicated) into the
// subset already present in existingIDs (to be incremented) and the
// subset that is not (to be inserted).
func partition(wordIDs []int32, existingIDs []int32) (toIncrement []int32, newIDs []int32) {
	existingSet := make(map[int32]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existingSet[id] = struct{}{}
	}
	seen := make(map[int32]struct{}, len(wordIDs))
	for _, id := range wordIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := existingSet[id]; ok {
			toIncrement = append(toIncrement, id)
		} else {
			newIDs = append(newIDs, id)
		}
	}
	return toIncrement, newIDs
}

func (s *Service) getAll(ctx context.Context, userID string, wordIDs []int32) ([]*Edge, error) {
	out := make([]*Edge, 0, len(wordIDs))
	for _, id := range wordIDs {
		rows, err := s.db.SelectWhere(ctx, table, store.Conditions{"user_id": userID, "word_id": id}, store.SelectOptions{Limit: 1})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		out = append(out, fromRow(rows[0]))
	}
	return out, nil
}

func fromRow(row store.Row) *Edge {
	e := &Edge{
		UserID:        asString(row["user_id"]),
		WordID:        asInt32(row["word_id"]),
		WrongCount:    asInt(row["wrong_count"]),
		WrongImageURL: asString(row["wrong_image_url"]),
	}
	if t, ok := row["last_wrong_at"].(time.Time); ok {
		e.LastWrongAt = t
	}
	return e
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int32:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asInt32(v any) int32 {
	return int32(asInt(v))
}
