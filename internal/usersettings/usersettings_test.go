package usersettings

import (
	"testing"
	"time"

	"github.com/hanzidojo/engine/internal/store"
)

func TestSettingsOrEmptyNilBecomesEmptyMap(t *testing.T) {
	got := settingsOrEmpty(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("settingsOrEmpty(nil) = %v, want empty map", got)
	}
}

func TestSettingsOrEmptyPassesThroughNonNil(t *testing.T) {
	in := map[string]any{"notify": true}
	got := settingsOrEmpty(in)
	if len(got) != 1 || got["notify"] != true {
		t.Fatalf("settingsOrEmpty(%v) = %v, want unchanged", in, got)
	}
}

func TestFromRowMapsKnownColumns(t *testing.T) {
	now := time.Now().UTC()
	row := store.Row{
		"user_id":    "u1",
		"language":   "en",
		"theme":      "dark",
		"settings":   map[string]any{"a": 1},
		"updated_at": now,
	}
	r := fromRow(row)
	if r.UserID != "u1" || r.Language != "en" || r.Theme != "dark" {
		t.Fatalf("fromRow = %+v", r)
	}
	if r.Settings["a"] != 1 {
		t.Fatalf("fromRow settings = %v", r.Settings)
	}
	if !r.UpdatedAt.Equal(now) {
		t.Fatalf("fromRow updated_at = %v, want %v", r.UpdatedAt, now)
	}
}

func TestFromRowTolerantOfMissingOptionalColumns(t *testing.T) {
	row := store.Row{"user_id": "u2", "language": "zh-hk"}
	r := fromRow(row)
	if r.UserID != "u2" || r.Language != "zh-hk" {
		t.Fatalf("fromRow = %+v", r)
	}
	if r.Theme != "" || r.Settings != nil {
		t.Fatalf("fromRow should leave absent columns zero-valued, got %+v", r)
	}
}
