package qgen

import "github.com/hanzidojo/engine/internal/generator"

const fillInVocabSystemPrompt = `You are a Chinese vocabulary tutor. For each requested target character, ` +
	`find several common multi-character words (vocabularies) that contain it, and list characters that look ` +
	`visually similar to the target (plausible wrong answers for a multiple-choice question). Respond only with ` +
	`the requested entries, one per target character, each keyed by its target_char.`

const fillInSentenceSystemPrompt = `You are a Chinese vocabulary tutor. For each requested target character, ` +
	`write one short example sentence that uses it, and list characters that look visually similar to the target ` +
	`(plausible wrong answers for a multiple-choice question). Respond only with the requested entries, one per ` +
	`target character, each keyed by its target_char.`

const pairingCardsSystemPrompt = `You are a Chinese vocabulary tutor. For each requested target character, ` +
	`list common two-character words containing it, suitable for a card-pairing exercise where each word is ` +
	`split into its two characters. Respond only with the requested entries, one per target character, each ` +
	`keyed by its target_char.`

// fillInVocabSchema describes {"entries": [{target_char, vocabularies[], similar_characters[]}, ...]},
// mirroring question.FillInVocabOutput (spec §4.4), batched across every
// character in one processor dispatch (spec §4.2's coalescing rule).
var fillInVocabSchema = generator.Schema{
	"type": "object",
	"properties": map[string]any{
		"entries": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target_char":        map[string]any{"type": "string"},
					"vocabularies":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"similar_characters": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"target_char", "vocabularies", "similar_characters"},
			},
		},
	},
	"required": []string{"entries"},
}

// fillInSentenceSchema mirrors question.FillInSentenceOutput, batched.
var fillInSentenceSchema = generator.Schema{
	"type": "object",
	"properties": map[string]any{
		"entries": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target_char":        map[string]any{"type": "string"},
					"sentence":           map[string]any{"type": "string"},
					"similar_characters": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"target_char", "sentence", "similar_characters"},
			},
		},
	},
	"required": []string{"entries"},
}

// pairingCardsSchema mirrors question.PairingCardsOutput, batched.
var pairingCardsSchema = generator.Schema{
	"type": "object",
	"properties": map[string]any{
		"entries": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target_char": map[string]any{"type": "string"},
					"n":           map[string]any{"type": "integer"},
					"words":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"target_char", "n", "words"},
			},
		},
	},
	"required": []string{"entries"},
}
