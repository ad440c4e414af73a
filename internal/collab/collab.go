// Package collab is the home for the engine's two OCR-adjacent external
// collaborator interfaces (spec §6): handwriting recognition and page
// scanning. Neither subsystem is in scope here — this package only
// defines the boundary and wires a scanned page's recognized characters
// into the wrong-word ledger, the one piece of orchestration logic that
// isn't purely the external subsystem's own concern.
//
// Grounded on internal/word's Scraper collaborator-interface pattern
// (spec §4.5), generalized from one external call to two, plus a small
// fan-in step.
package collab

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/wrongword"
)

// HandwriteResult is check_handwrite's response shape (spec §6).
type HandwriteResult struct {
	IsCorrect     bool
	WrongImageURL string
}

// Recognizer is the handwriting-recognition collaborator interface (spec
// §6: "check_handwrite(image_ref, target_char, user)").
type Recognizer interface {
	RecognizeHandwriting(ctx context.Context, imageRef, targetChar, userID string) (*HandwriteResult, error)
}

// ScanItem is one recognized (or unrecognized) character from a scanned
// page, paired with the submitted snippet that produced it.
type ScanItem struct {
	Char          string
	WrongImageURL string
}

// ScanResult is scan_page's response shape (spec §6): items is the set of
// characters the collaborator could identify, not_found is everything it
// couldn't.
type ScanResult struct {
	Items    []ScanItem
	NotFound []ScanItem
}

// Scanner is the page-scanning collaborator interface (spec §6:
// "scan_page(image_ref, user)").
type Scanner interface {
	ScanPage(ctx context.Context, imageRef, userID string) (*ScanResult, error)
}

// Service fronts both collaborators for the engine's own callers and
// folds a successful scan into the wrong-word ledger.
type Service struct {
	recognizer Recognizer
	scanner    Scanner
	wrongwords *wrongword.Service
	log        zerolog.Logger
}

// New builds a Service.
func New(recognizer Recognizer, scanner Scanner, wrongwords *wrongword.Service, log zerolog.Logger) *Service {
	return &Service{
		recognizer: recognizer,
		scanner:    scanner,
		wrongwords: wrongwords,
		log:        log.With().Str("component", "collab").Logger(),
	}
}

// RecognizeHandwriting is a thin pass-through to the recognizer, kept as a
// Service method so callers depend on one collaborator facade rather than
// the raw Recognizer interface directly.
func (s *Service) RecognizeHandwriting(ctx context.Context, imageRef, targetChar, userID string) (*HandwriteResult, error) {
	return s.recognizer.RecognizeHandwriting(ctx, imageRef, targetChar, userID)
}

// ScanAndRecord implements the `/user/wrong-words/scanning` route's
// composition (spec §6): scan the page, then record every recognized
// character as a wrong-word edge via wrongword.BatchAdd. The scan
// result (including not_found) is returned unchanged so the caller can
// surface both halves to the user.
func (s *Service) ScanAndRecord(ctx context.Context, imageRef, userID string) (*ScanResult, error) {
	result, err := s.scanner.ScanPage(ctx, imageRef, userID)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return result, nil
	}

	inputs := make([]wrongword.WrongAddInput, len(result.Items))
	for i, item := range result.Items {
		inputs[i] = wrongword.WrongAddInput{Char: item.Char, ImageURL: item.WrongImageURL}
	}
	if _, err := s.wrongwords.BatchAdd(ctx, userID, inputs); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Int("recognized", len(result.Items)).Int("not_found", len(result.NotFound)).Msg("scanned page")
	return result, nil
}
