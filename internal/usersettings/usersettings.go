// Package usersettings is the per-user preferences service (spec §4.12):
// get and upsert over a one-row-per-user settings record.
//
// Grounded on internal/word's fetch-then-insert-if-absent shape, adapted
// from "create on first sight" to "create with defaults on first touch,
// otherwise patch only the supplied fields".
package usersettings

import (
	"context"
	"time"

	"github.com/hanzidojo/engine/internal/engerr"
	"github.com/hanzidojo/engine/internal/store"
)

const table = "user_settings"

// defaultLanguage is applied when a settings row is created for a user
// who has never touched their preferences (spec §4.12, §3).
const defaultLanguage = "zh-hk"

// Record is a user's settings row.
type Record struct {
	UserID    string
	Language  string
	Theme     string
	Settings  map[string]any
	UpdatedAt time.Time
}

// Fields is a partial update: nil pointers/maps leave the corresponding
// column untouched. Upsert always stamps updated_at.
type Fields struct {
	Language *string
	Theme    *string
	Settings map[string]any
}

// Service is the user-settings collaborator.
type Service struct {
	db *store.DB
}

// New builds a Service.
func New(db *store.DB) *Service {
	return &Service{db: db}
}

// Get implements spec §4.12's get(user): the row, or a NotFoundError if the
// user has never had settings created.
func (s *Service) Get(ctx context.Context, userID string) (*Record, error) {
	rows, err := s.db.SelectWhere(ctx, table, store.Conditions{"user_id": userID}, store.SelectOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, engerr.NewNotFoundError("usersettings: no settings for user %s", userID)
	}
	return fromRow(rows[0]), nil
}

// Upsert implements spec §4.12's upsert(user, fields): creates the row with
// defaults (language zh-hk) if absent, otherwise updates only the fields
// supplied in f and stamps updated_at.
func (s *Service) Upsert(ctx context.Context, userID string, f Fields) (*Record, error) {
	existing, err := s.Get(ctx, userID)
	switch {
	case err == nil:
		return s.patch(ctx, existing, f)
	case engerr.KindOf(err) == engerr.KindNotFound:
		return s.create(ctx, userID, f)
	default:
		return nil, err
	}
}

func (s *Service) create(ctx context.Context, userID string, f Fields) (*Record, error) {
	language := defaultLanguage
	if f.Language != nil {
		language = *f.Language
	}
	row := store.Row{
		"user_id":  userID,
		"language": language,
		"settings": settingsOrEmpty(f.Settings),
	}
	if f.Theme != nil {
		row["theme"] = *f.Theme
	}
	inserted, err := s.db.Insert(ctx, table, row)
	if err != nil {
		return nil, err
	}
	return fromRow(inserted), nil
}

func (s *Service) patch(ctx context.Context, existing *Record, f Fields) (*Record, error) {
	set := store.Row{}
	if f.Language != nil {
		set["language"] = *f.Language
	}
	if f.Theme != nil {
		set["theme"] = *f.Theme
	}
	if f.Settings != nil {
		set["settings"] = f.Settings
	}
	if len(set) == 0 {
		return existing, nil
	}
	set["updated_at"] = time.Now().UTC()

	if _, err := s.db.UpdateWhere(ctx, table, set, store.Conditions{"user_id": existing.UserID}); err != nil {
		return nil, err
	}
	return s.Get(ctx, existing.UserID)
}

func settingsOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func fromRow(row store.Row) *Record {
	r := &Record{
		UserID: stringOf(row["user_id"]),
	}
	if v, ok := row["language"].(string); ok {
		r.Language = v
	}
	if v, ok := row["theme"].(string); ok {
		r.Theme = v
	}
	if v, ok := row["settings"].(map[string]any); ok {
		r.Settings = v
	}
	if v, ok := row["updated_at"].(time.Time); ok {
		r.UpdatedAt = v
	}
	return r
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
