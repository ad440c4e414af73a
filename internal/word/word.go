// Package word is the catalog service (spec §4.5): create-on-first-sight
// of a Chinese character, plus thin stored-procedure reads for random and
// existing-id lookups.
//
// Grounded on pkg/connector/linkpreview.go's fetch-then-cache-then-persist
// shape (beeper-ai-bridge), generalized from "fetch a link preview, cache
// it" to "fetch dictionary metadata, persist it once".
package word

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/engerr"
	"github.com/hanzidojo/engine/internal/store"
)

const wordsTable = "words"

// Record is a catalog entry: a single Chinese character keyed by its
// Unicode codepoint.
type Record struct {
	ID                 int32
	Description        string
	DictionaryImageURL string
	PronunciationURL   string
	StrokeAnimationURL string
	CreatedAt          time.Time
}

// Metadata is what a dictionary scraper contributes; everything else on
// Record is derived or store-assigned.
type Metadata struct {
	Description        string
	DictionaryImageURL string
}

// Scraper is the external dictionary-metadata collaborator (spec §4.5:
// "call the dictionary scraper (external)").
type Scraper interface {
	Scrape(ctx context.Context, char string) (Metadata, error)
}

// Service is the word catalog.
type Service struct {
	db                         *store.DB
	scraper                    Scraper
	pronunciationURLTemplate   string
	strokeAnimationURLTemplate string
	log                        zerolog.Logger
}

// New builds a Service. The two templates are fmt.Sprintf patterns taking
// the character's codepoint as a %d verb (spec §4.5: "derived pronunciation
// and stroke URLs").
func New(db *store.DB, scraper Scraper, pronunciationURLTemplate, strokeAnimationURLTemplate string, log zerolog.Logger) *Service {
	return &Service{
		db:                         db,
		scraper:                    scraper,
		pronunciationURLTemplate:   pronunciationURLTemplate,
		strokeAnimationURLTemplate: strokeAnimationURLTemplate,
		log:                        log.With().Str("component", "word").Logger(),
	}
}

// CodepointOf returns char's first rune as the catalog id, per the words
// table's CHECK (id between U+4E00 and U+9FFF).
func CodepointOf(char string) int32 {
	for _, r := range char {
		return int32(r)
	}
	return 0
}

// CreateIfMissing implements spec §4.5's create_if_missing: consult the
// catalog; if absent, scrape dictionary metadata, derive the asset URLs,
// insert, and return the new record. If present, the existing record is
// returned unchanged.
func (s *Service) CreateIfMissing(ctx context.Context, char string) (*Record, error) {
	id := CodepointOf(char)
	if id == 0 {
		return nil, engerr.NewValidationError("word: empty character")
	}

	rows, err := s.db.SelectWhere(ctx, wordsTable, store.Conditions{"id": id}, store.SelectOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return fromRow(rows[0]), nil
	}

	meta, err := s.scraper.Scrape(ctx, char)
	if err != nil {
		return nil, engerr.WrapTransportError(err, "word: scrape dictionary metadata for %q", char)
	}

	row := store.Row{
		"id":                   id,
		"description":          meta.Description,
		"dictionary_image_url": meta.DictionaryImageURL,
		"pronunciation_url":    fmt.Sprintf(s.pronunciationURLTemplate, id),
		"stroke_animation_url": fmt.Sprintf(s.strokeAnimationURLTemplate, id),
	}
	inserted, err := s.db.Insert(ctx, wordsTable, row)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int32("word_id", id).Msg("created catalog word")
	return fromRow(inserted), nil
}

// GetRandom implements spec §4.5's get_random(n): a thin stored-procedure
// call (spec §4.8 stage 1's augment-with-random-words path).
func (s *Service) GetRandom(ctx context.Context, n int) ([]*Record, error) {
	rows, err := s.db.GetRandomWords(ctx, n)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// GetExisting implements spec §4.5's get_existing(ids[]): a thin
// stored-procedure call resolving word ids to catalog rows.
func (s *Service) GetExisting(ctx context.Context, ids []int32) ([]*Record, error) {
	rows, err := s.db.GetExistingWords(ctx, ids)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func fromRows(rows []store.Row) []*Record {
	out := make([]*Record, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out
}

func fromRow(row store.Row) *Record {
	r := &Record{
		ID:                 asInt32(row["id"]),
		Description:        asString(row["description"]),
		DictionaryImageURL: asString(row["dictionary_image_url"]),
		PronunciationURL:   asString(row["pronunciation_url"]),
		StrokeAnimationURL: asString(row["stroke_animation_url"]),
	}
	if t, ok := row["created_at"].(time.Time); ok {
		r.CreatedAt = t
	}
	return r
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt32(v any) int32 {
	switch n := v.(type) {
	case int32:
		return n
	case int64:
		return int32(n)
	case int:
		return int32(n)
	case float64:
		return int32(n)
	default:
		return 0
	}
}
