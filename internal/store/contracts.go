// Package store (contracts.go) — typed Go wrappers over the stored
// procedures enumerated in spec §4.11 and §6. Each wrapper is a thin
// CALL/SELECT through CallProcedure{,Named,JSON}; the actual function
// bodies live in migrations/ as Postgres CREATE FUNCTION statements, so
// the atomicity guarantees (spec §4.11, §5) are enforced by the engine's
// own transaction machinery, not by Go-level locking.
package store

import (
	"context"
	"time"

	"github.com/lib/pq"
)

// UserExperienceResult is update_user_experience's return shape.
type UserExperienceResult struct {
	NewExp   int64 `json:"new_exp"`
	NewLevel int   `json:"new_level"`
}

// UpdateUserExperience atomically adds delta to the user's exp and
// recomputes level, per spec §4.11.
func (d *DB) UpdateUserExperience(ctx context.Context, userID string, delta int64) (*UserExperienceResult, error) {
	var out UserExperienceResult
	if err := d.CallProcedureJSON(ctx, "update_user_experience", &out, userID, delta); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrCreateTodayTasks returns the user's current ongoing-or-completed
// -today tasks, creating the daily task if none exists for the calendar
// day (UTC+8), per spec §4.11.
func (d *DB) GetOrCreateTodayTasks(ctx context.Context, userID string) ([]Row, error) {
	return d.CallProcedure(ctx, "get_or_create_today_tasks", userID)
}

// TaskProgressResult is set_task_progress's return shape.
type TaskProgressResult struct {
	Updated    bool `json:"updated"`
	GrantedExp int  `json:"granted_exp"`
}

// SetTaskProgress updates a task's progress and, on the ongoing→completed
// transition, grants its XP reward exactly once (spec §4.11, §8).
func (d *DB) SetTaskProgress(ctx context.Context, userID, taskID string, progress int) (*TaskProgressResult, error) {
	var out TaskProgressResult
	if err := d.CallProcedureJSON(ctx, "set_task_progress", &out, userID, taskID, progress); err != nil {
		return nil, err
	}
	return &out, nil
}

// IncrementWrongCountForUser atomically +1's wrong_count and stamps
// last_wrong_at for existing (user, word) rows only (spec §4.11).
func (d *DB) IncrementWrongCountForUser(ctx context.Context, userID string, wordIDs []int32) error {
	_, err := d.CallProcedure(ctx, "increment_wrong_count_for_user", userID, pq.Array(wordIDs))
	return err
}

// AddUserResult is add_new_user's return shape.
type AddUserResult struct {
	User    Row  `json:"-"`
	Existed bool `json:"existed"`
}

// AddNewUser is idempotent on email uniqueness (spec §4.11).
func (d *DB) AddNewUser(ctx context.Context, name, email string) (*AddUserResult, error) {
	rows, err := d.CallProcedure(ctx, "add_new_user", name, email)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, engerrQuery(nil, "add_new_user returned no row")
	}
	row := rows[0]
	existed, _ := row["existed"].(bool)
	delete(row, "existed")
	return &AddUserResult{User: row, Existed: existed}, nil
}

// CleanupGameSessionsResult is cleanup_game_sessions's return shape.
type CleanupGameSessionsResult struct {
	AbandonedCount int64 `json:"abandoned_count"`
	DeletedCount   int64 `json:"deleted_count"`
}

// CleanupGameSessions marks stale in_progress sessions abandoned and
// deletes old completed/abandoned ones (spec §4.10, §4.11).
func (d *DB) CleanupGameSessions(ctx context.Context) (*CleanupGameSessionsResult, error) {
	var out CleanupGameSessionsResult
	if err := d.CallProcedureJSON(ctx, "cleanup_game_sessions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CleanupAuthSessionsResult is cleanup_auth_sessions's return shape.
type CleanupAuthSessionsResult struct {
	ExpiredCount int64 `json:"expired_count"`
	DeletedCount int64 `json:"deleted_count"`
}

// CleanupAuthSessions flips expired sessions inactive and deletes stale
// inactive ones (spec §4.10, §4.11).
func (d *DB) CleanupAuthSessions(ctx context.Context) (*CleanupAuthSessionsResult, error) {
	var out CleanupAuthSessionsResult
	if err := d.CallProcedureJSON(ctx, "cleanup_auth_sessions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPastWrongWordsByUser is a paginated read of a user's wrong-word edges
// (spec §6).
func (d *DB) GetPastWrongWordsByUser(ctx context.Context, userID string, limit, offset int) ([]Row, error) {
	return d.CallProcedure(ctx, "get_past_wrong_words_by_user", userID, limit, offset)
}

// GetWrongWordsByUserAfter supports keyset pagination over a user's
// wrong-word edges (spec §6).
func (d *DB) GetWrongWordsByUserAfter(ctx context.Context, userID string, after time.Time, wordID int32) ([]Row, error) {
	return d.CallProcedure(ctx, "get_wrong_words_by_user_after", userID, after, wordID)
}

// UpdateQuestionStats bumps use_count for answered questions and
// correct_count for the subset that were answered correctly (spec §6).
func (d *DB) UpdateQuestionStats(ctx context.Context, answered, correct []string) error {
	_, err := d.CallProcedure(ctx, "update_question_stats", pq.Array(answered), pq.Array(correct))
	return err
}

// CountQuestionTypes returns, per kind, how many questions exist for a
// word (spec §6), flagged ones included.
func (d *DB) CountQuestionTypes(ctx context.Context, wordID int32) ([]Row, error) {
	return d.CallProcedure(ctx, "count_question_types", wordID)
}

// GetRandomWords returns count random catalog words (spec §6; used by
// Stage 1's augment-with-random-words path).
func (d *DB) GetRandomWords(ctx context.Context, count int) ([]Row, error) {
	return d.CallProcedure(ctx, "get_random_words", count)
}

// GetExistingWords resolves a set of word ids to their catalog rows (spec
// §6).
func (d *DB) GetExistingWords(ctx context.Context, wordIDs []int32) ([]Row, error) {
	return d.CallProcedure(ctx, "get_existing_words", pq.Array(wordIDs))
}

// GetExistingWrongWordIDs filters wordIDs down to those that already have
// a past_wrong_words row for userID (spec §6; used to route a batch_add
// into increment-vs-insert subsets, §4.6).
func (d *DB) GetExistingWrongWordIDs(ctx context.Context, userID string, wordIDs []int32) ([]int32, error) {
	rows, err := d.CallProcedure(ctx, "get_existing_wrong_word_ids", userID, pq.Array(wordIDs))
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, len(rows))
	for _, r := range rows {
		if v, ok := r["word_id"]; ok {
			out = append(out, toInt32(v))
		}
	}
	return out, nil
}

// GetRecentQuestionsForWords is Stage 2's lateral-join fetch (spec §4.8):
// the most recent limitPerWord non-flagged questions per candidate word.
func (d *DB) GetRecentQuestionsForWords(ctx context.Context, wordIDs []int32, limitPerWord int) ([]Row, error) {
	return d.CallProcedure(ctx, "get_recent_questions_for_words", pq.Array(wordIDs), limitPerWord)
}

func toInt32(v any) int32 {
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
