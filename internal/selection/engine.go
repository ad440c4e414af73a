package selection

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/config"
	"github.com/hanzidojo/engine/internal/engerr"
	"github.com/hanzidojo/engine/internal/qgen"
	"github.com/hanzidojo/engine/internal/question"
	"github.com/hanzidojo/engine/internal/store"
	"github.com/hanzidojo/engine/internal/word"
	"github.com/hanzidojo/engine/internal/wrongword"
)

// Engine is the adaptive selection engine (spec §4.8): it turns a user's
// wrong-word history into up to N questions, mixing recycled and
// freshly generated material, or fails with NoQuestionsError when it
// produces none.
type Engine struct {
	db         *store.DB
	words      *word.Service
	wrongwords *wrongword.Service
	qgen       *qgen.Service
	cfg        config.SelectionConfig
	log        zerolog.Logger
}

// New builds an Engine.
func New(db *store.DB, words *word.Service, wrongwords *wrongword.Service, gen *qgen.Service, cfg config.SelectionConfig, log zerolog.Logger) *Engine {
	return &Engine{
		db:         db,
		words:      words,
		wrongwords: wrongwords,
		qgen:       gen,
		cfg:        cfg,
		log:        log.With().Str("component", "selection").Logger(),
	}
}

// Select runs all six stages and returns at most n questions: n when the
// stages and the final top-up find enough, fewer otherwise. It fails with
// NoQuestionsError only when no question at all was produced.
func (e *Engine) Select(ctx context.Context, userID string, n int) ([]*question.Question, error) {
	if n <= 0 {
		return nil, engerr.NewValidationError("selection: qCount must be positive, got %d", n)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	// Stage 1.
	wordIDs, err := selectRevisionWords(ctx, e.words, e.wrongwords, userID, e.cfg, now, rng)
	if err != nil {
		return nil, err
	}
	if len(wordIDs) == 0 {
		return nil, engerr.NewNoQuestionsError("selection: no candidate words available for user %s", userID)
	}

	// Stage 2.
	batches, decodeErrs := fetchBatches(ctx, e.db, wordIDs, e.cfg.LateralJoinLimit)
	for _, derr := range decodeErrs {
		e.log.Warn().Err(derr).Msg("skipped a question row that failed to decode")
	}

	// Stage 3. Batch order is randomized before stage 4 walks it, to
	// avoid positional bias (spec §4.8).
	classify(batches, e.cfg, now, rng)
	order := append([]int32(nil), wordIDs...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	// Stage 4.
	selected, served := collectGoodExisting(order, batches, n, e.cfg.NeverOutdatedCap)

	// Stage 5: one generation task per still-unserved word, up to what's
	// left to reach n.
	var tasks []genTask
	for _, wordID := range order {
		if len(selected)+len(tasks) >= n {
			break
		}
		if served[wordID] {
			continue
		}
		tasks = append(tasks, genTask{wordID: wordID, kind: randomKind(rng)})
	}
	generated, failed, err := generateAndPersist(ctx, e.qgen, e.db, userID, tasks)
	if err != nil {
		return nil, err
	}
	selected = append(selected, generated...)

	// Stage 6.
	selected = append(selected, runFallback(ctx, e.qgen, userID, failed, batches, rng)...)

	// Final top-up.
	if len(selected) < n {
		selected = append(selected, topUp(order, batches, selected, n-len(selected))...)
	}

	if len(selected) == 0 {
		return nil, engerr.NewNoQuestionsError("selection: produced zero questions for user %s", userID)
	}
	if len(selected) > n {
		selected = selected[:n]
	}
	return selected, nil
}
