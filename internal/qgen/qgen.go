// Package qgen is the stateless question generator (spec §4.7): one
// function per kind, deterministic for copy_stroke/listening, LLM-backed
// through the batching queue manager for the three AI kinds.
//
// Grounded on pkg/cron/service.go's single-owner-per-purpose instance
// shape (design note "Global queue manager": one batchqueue.Processor per
// AI kind, held here as an explicit field rather than package-level
// state) and pkg/connector/linkpreview.go's fetch-then-adapt pipeline,
// generalized to "call the generator once per batch, adapt each entry".
package qgen

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/batchqueue"
	"github.com/hanzidojo/engine/internal/engerr"
	"github.com/hanzidojo/engine/internal/generator"
	"github.com/hanzidojo/engine/internal/question"
	"github.com/hanzidojo/engine/internal/store"
	"github.com/hanzidojo/engine/internal/word"
)

const questionsTable = "questions"

// pairingWordsPerChar is how many candidate two-character words the
// pairing_cards prompt asks the generator for per target character (spec
// §4.4: "each word is split into two halves... discard words whose
// length is not 2" — asking for more than the minimum absorbs discards).
const pairingWordsPerChar = 8

// BlobStore is the subset of the blob-store collaborator (spec §6) that
// copy_stroke needs: a fresh upload URL for the submitting user.
type BlobStore interface {
	SubmitURLFor(ctx context.Context, userID string) (string, error)
}

// aiAux carries no per-submission data; the three AI-backed kinds need
// nothing beyond the target character itself (spec §4.7's documented
// caveat about head-of-batch aux applies to processors that need aux at
// all — these don't).
type aiAux = struct{}

// Service is the stateless question generator.
type Service struct {
	db    *store.DB
	words *word.Service
	blobs BlobStore
	gen   *generator.Client
	log   zerolog.Logger

	fillInVocab    *batchqueue.Processor[string, *question.Question, aiAux]
	fillInSentence *batchqueue.Processor[string, *question.Question, aiAux]
	pairingCards   *batchqueue.Processor[string, *question.Question, aiAux]
}

// New builds a Service and starts its three AI-backed batch processors
// (design note "Global queue manager": exactly one Processor per kind,
// owned here and injected into the service that needs them, not held as
// package-level mutable state).
func New(db *store.DB, words *word.Service, blobs BlobStore, gen *generator.Client, batchSize int, maxWait time.Duration, log zerolog.Logger) *Service {
	log = log.With().Str("component", "qgen").Logger()
	s := &Service{db: db, words: words, blobs: blobs, gen: gen, log: log}
	s.fillInVocab = batchqueue.New("fill_in_vocab", batchSize, maxWait, s.batchFillInVocab, log)
	s.fillInSentence = batchqueue.New("fill_in_sentence", batchSize, maxWait, s.batchFillInSentence, log)
	s.pairingCards = batchqueue.New("pairing_cards", batchSize, maxWait, s.batchPairingCards, log)
	return s
}

// Stop drains the three processors (spec §5's shutdown ordering: "queue
// manager" is the first thing the controller stops).
func (s *Service) Stop() {
	s.fillInVocab.Stop()
	s.fillInSentence.Stop()
	s.pairingCards.Stop()
}

// Generate dispatches char to the right path for kind and returns an
// in-memory (not yet persisted) Question (spec §4.7).
func (s *Service) Generate(ctx context.Context, userID, char string, kind question.Kind) (*question.Question, error) {
	switch kind {
	case question.KindCopyStroke:
		return s.generateCopyStroke(ctx, userID, char)
	case question.KindListening:
		return s.generateListening(ctx, char)
	case question.KindFillInVocab:
		return s.fillInVocab.Submit(ctx, char, aiAux{})
	case question.KindFillInSentence:
		return s.fillInSentence.Submit(ctx, char, aiAux{})
	case question.KindPairingCards:
		return s.pairingCards.Submit(ctx, char, aiAux{})
	default:
		return nil, engerr.NewValidationError("qgen: kind %q has no generator", kind)
	}
}

// GenerateAndSave implements spec §4.7's generate_and_save(char, user,
// kind): generate, insert the row, and write the store-assigned id back
// onto the returned object. An insert failure discards the in-memory
// object and surfaces PersistError.
func (s *Service) GenerateAndSave(ctx context.Context, userID, char string, kind question.Kind) (*question.Question, error) {
	q, err := s.Generate(ctx, userID, char, kind)
	if err != nil {
		return nil, err
	}

	inserted, err := s.db.Insert(ctx, questionsTable, q.ToRow())
	if err != nil {
		return nil, engerr.WrapPersistError(err, "qgen: persist generated %s question", kind)
	}

	saved, err := question.FromRow(inserted)
	if err != nil {
		return nil, engerr.WrapPersistError(err, "qgen: decode persisted %s question", kind)
	}
	return saved, nil
}

func (s *Service) generateCopyStroke(ctx context.Context, userID, char string) (*question.Question, error) {
	w, err := s.words.CreateIfMissing(ctx, char)
	if err != nil {
		return nil, err
	}
	submitURL, err := s.blobs.SubmitURLFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return question.NewCopyStroke(w.ID, char, submitURL), nil
}

func (s *Service) generateListening(ctx context.Context, char string) (*question.Question, error) {
	w, err := s.words.CreateIfMissing(ctx, char)
	if err != nil {
		return nil, err
	}
	return question.NewListening(w.ID, char, w.PronunciationURL)
}

// batchFillInVocab is the fill_in_vocab processor's batch_fn: one
// generator call describes every character in the batch, the response is
// matched back to requests by target_char, and each match is adapted
// individually (spec §4.4's fill_in_vocab adaptor).
func (s *Service) batchFillInVocab(ctx context.Context, chars []string, _ aiAux) ([]*question.Question, error) {
	var resp struct {
		Entries []question.FillInVocabOutput `json:"entries"`
	}
	req := generator.Request{
		SystemPrompt: fillInVocabSystemPrompt,
		UserPrompt:   fillInVocabUserPrompt(chars),
		Schema:       fillInVocabSchema,
	}
	if err := s.gen.StructuredGenerate(ctx, req, &resp); err != nil {
		return nil, err
	}

	byChar := make(map[string]question.FillInVocabOutput, len(resp.Entries))
	for _, e := range resp.Entries {
		byChar[e.TargetChar] = e
	}

	out := make([]*question.Question, 0, len(chars))
	for _, ch := range chars {
		entry, ok := byChar[ch]
		if !ok {
			break // short batch: remaining waiters get ShortBatchError
		}
		w, err := s.words.CreateIfMissing(ctx, ch)
		if err != nil {
			return nil, err
		}
		q, err := question.AdaptFillInVocab(entry, w.ID)
		if err != nil {
			break
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *Service) batchFillInSentence(ctx context.Context, chars []string, _ aiAux) ([]*question.Question, error) {
	var resp struct {
		Entries []question.FillInSentenceOutput `json:"entries"`
	}
	req := generator.Request{
		SystemPrompt: fillInSentenceSystemPrompt,
		UserPrompt:   fillInSentenceUserPrompt(chars),
		Schema:       fillInSentenceSchema,
	}
	if err := s.gen.StructuredGenerate(ctx, req, &resp); err != nil {
		return nil, err
	}

	byChar := make(map[string]question.FillInSentenceOutput, len(resp.Entries))
	for _, e := range resp.Entries {
		byChar[e.TargetChar] = e
	}

	out := make([]*question.Question, 0, len(chars))
	for _, ch := range chars {
		entry, ok := byChar[ch]
		if !ok {
			break
		}
		w, err := s.words.CreateIfMissing(ctx, ch)
		if err != nil {
			return nil, err
		}
		q, err := question.AdaptFillInSentence(entry, w.ID)
		if err != nil {
			break
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *Service) batchPairingCards(ctx context.Context, chars []string, _ aiAux) ([]*question.Question, error) {
	var resp struct {
		Entries []question.PairingCardsOutput `json:"entries"`
	}
	req := generator.Request{
		SystemPrompt: pairingCardsSystemPrompt,
		UserPrompt:   pairingCardsUserPrompt(chars),
		Schema:       pairingCardsSchema,
	}
	if err := s.gen.StructuredGenerate(ctx, req, &resp); err != nil {
		return nil, err
	}

	byChar := make(map[string]question.PairingCardsOutput, len(resp.Entries))
	for _, e := range resp.Entries {
		byChar[e.TargetChar] = e
	}

	out := make([]*question.Question, 0, len(chars))
	for _, ch := range chars {
		entry, ok := byChar[ch]
		if !ok {
			break
		}
		w, err := s.words.CreateIfMissing(ctx, ch)
		if err != nil {
			return nil, err
		}
		q, err := question.AdaptPairingCards(entry, w.ID)
		if err != nil {
			break
		}
		out = append(out, q)
	}
	return out, nil
}

func charList(chars []string) string {
	s := ""
	for i, ch := range chars {
		if i > 0 {
			s += ", "
		}
		s += ch
	}
	return s
}

func fillInVocabUserPrompt(chars []string) string {
	return fmt.Sprintf("Produce one fill_in_vocab entry per target character: %s.", charList(chars))
}

func fillInSentenceUserPrompt(chars []string) string {
	return fmt.Sprintf("Produce one fill_in_sentence entry per target character: %s.", charList(chars))
}

func pairingCardsUserPrompt(chars []string) string {
	return fmt.Sprintf("Produce one pairing_cards entry per target character (n=%d two-character words each): %s.", pairingWordsPerChar, charList(chars))
}
