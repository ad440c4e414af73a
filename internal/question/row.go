package question

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hanzidojo/engine/internal/store"
)

// ToRow flattens a Question into the store's denormalized row shape (spec
// §4.4: "the store row stays denormalized with per-payload columns;
// adaptors convert in one place"). Only the columns relevant to q's
// AnswerShape are populated; ID and CreatedAt are omitted when zero so an
// Insert picks up the table's defaults.
func (q *Question) ToRow() store.Row {
	row := store.Row{
		"kind":           string(q.Kind),
		"answer_shape":   string(q.AnswerShape),
		"target_word_id": q.TargetWordID,
		"prompt":         q.Prompt,
		"use_count":      q.UseCount,
		"correct_count":  q.CorrectCount,
	}
	if q.ID != "" {
		row["id"] = q.ID
	}
	if !q.CreatedAt.IsZero() {
		row["created_at"] = q.CreatedAt
	}
	if q.GivenMaterial != nil {
		row["given_material"] = q.GivenMaterial
	}

	switch {
	case q.MultiChoice != nil:
		mc := q.MultiChoice
		row["mc_choices"] = mc.Options
		row["mc_answers"] = mc.Answers
		row["mc_min_choices"] = mc.MinChoices
		row["mc_max_choices"] = mc.MaxChoices
		row["mc_strict_order"] = mc.StrictOrder
		row["mc_randomize"] = mc.Randomize
		row["mc_display_hint"] = mc.DisplayHint
	case q.Writing != nil:
		w := q.Writing
		row["handwrite_target"] = w.TargetChar
		row["submit_url"] = w.SubmitURL
		if w.BackgroundImageURL != nil {
			row["background_image_url"] = *w.BackgroundImageURL
		}
	case q.Pairing != nil:
		p := q.Pairing
		row["pairs"] = p.Pairs
		row["pairing_display_hint"] = p.DisplayHint
	}
	return row
}

// FromRow reconstructs a Question from a store row (as returned by
// SelectWhere/Query) and validates it. JSON columns arrive already decoded
// into generic any values by the store's scan path; FromRow re-encodes
// them to JSON and decodes into the typed payload structs, since that's
// the only generic-any-to-typed-struct path that doesn't require the
// store package to know about question-specific types.
func FromRow(row store.Row) (*Question, error) {
	q := &Question{
		Kind:         Kind(asString(row["kind"])),
		AnswerShape:  AnswerShape(asString(row["answer_shape"])),
		ID:           asString(row["id"]),
		Prompt:       asString(row["prompt"]),
		TargetWordID: asInt32(row["target_word_id"]),
		UseCount:     asInt(row["use_count"]),
		CorrectCount: asInt(row["correct_count"]),
	}
	if t, ok := row["created_at"].(time.Time); ok {
		q.CreatedAt = t
	}

	if row["given_material"] != nil {
		var gm GivenMaterial
		if err := reencode(row["given_material"], &gm); err != nil {
			return nil, fmt.Errorf("question: decode given_material: %w", err)
		}
		q.GivenMaterial = &gm
	}

	switch q.AnswerShape {
	case ShapeMultiChoice:
		mc := &MultiChoicePayload{
			MinChoices:  asInt(row["mc_min_choices"]),
			MaxChoices:  asInt(row["mc_max_choices"]),
			StrictOrder: asBool(row["mc_strict_order"]),
			Randomize:   asBool(row["mc_randomize"]),
		}
		if err := reencode(row["mc_choices"], &mc.Options); err != nil {
			return nil, fmt.Errorf("question: decode mc_choices: %w", err)
		}
		if err := reencode(row["mc_answers"], &mc.Answers); err != nil {
			return nil, fmt.Errorf("question: decode mc_answers: %w", err)
		}
		if err := reencode(row["mc_display_hint"], &mc.DisplayHint); err != nil {
			return nil, fmt.Errorf("question: decode mc_display_hint: %w", err)
		}
		q.MultiChoice = mc
	case ShapeWriting:
		w := &WritingPayload{
			TargetChar: asString(row["handwrite_target"]),
			SubmitURL:  asString(row["submit_url"]),
		}
		if bg := asString(row["background_image_url"]); bg != "" {
			w.BackgroundImageURL = &bg
		}
		q.Writing = w
	case ShapePairing:
		p := &PairingPayload{}
		if err := reencode(row["pairs"], &p.Pairs); err != nil {
			return nil, fmt.Errorf("question: decode pairs: %w", err)
		}
		if err := reencode(row["pairing_display_hint"], &p.DisplayHint); err != nil {
			return nil, fmt.Errorf("question: decode pairing_display_hint: %w", err)
		}
		q.Pairing = p
	default:
		return nil, fmt.Errorf("question: unknown answer_shape %q in row", q.AnswerShape)
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// reencode round-trips a generic decoded-JSON value (map[string]any,
// []any, ...) through JSON into a typed target. A nil source leaves
// target untouched.
func reencode(v any, target any) error {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
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
