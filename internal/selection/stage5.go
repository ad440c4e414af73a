package selection

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hanzidojo/engine/internal/engerr"
	"github.com/hanzidojo/engine/internal/qgen"
	"github.com/hanzidojo/engine/internal/question"
	"github.com/hanzidojo/engine/internal/store"
)

const questionsTable = "questions"

// availableKinds is the set stage 5 (and stage 6's retry path) choose
// from uniformly at random (spec §4.8 stage 5: "choose a kind uniformly
// at random from the available set") — the kinds internal/qgen actually
// knows how to generate (spec §4.7). The tagged union's other six kinds
// have no generator and are only ever served from recycled questions.
var availableKinds = []question.Kind{
	question.KindCopyStroke,
	question.KindListening,
	question.KindFillInVocab,
	question.KindFillInSentence,
	question.KindPairingCards,
}

func randomKind(rng *rand.Rand) question.Kind {
	return availableKinds[rng.Intn(len(availableKinds))]
}

// genTask is one stage-5/6 generation attempt: a candidate word assigned
// a kind to generate.
type genTask struct {
	wordID int32
	kind   question.Kind
}

func (t genTask) char() string {
	return string(rune(t.wordID))
}

type genResult struct {
	task genTask
	q    *question.Question
	err  error
}

// dispatchAll runs every task concurrently and waits for all of them
// (spec §4.8 stage 5: "all generation tasks are launched together and
// awaited in parallel"), grounded on the teacher's goroutine+WaitGroup
// fan-out idiom used for concurrent tool dispatch (pkg/agents).
func dispatchAll(ctx context.Context, gen *qgen.Service, userID string, tasks []genTask) []genResult {
	results := make([]genResult, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t genTask) {
			defer wg.Done()
			q, err := gen.Generate(ctx, userID, t.char(), t.kind)
			results[i] = genResult{task: t, q: q, err: err}
		}(i, t)
	}
	wg.Wait()
	return results
}

// reconcile splits dispatchAll's results into the successes (validated:
// "result.target_word == requested_word") and the (word, kind) pairs
// that failed or were dropped, which stage 6 picks up.
func reconcile(results []genResult) (succeeded []*question.Question, failed []genTask) {
	for _, r := range results {
		if r.err != nil || r.q == nil || r.q.TargetWordID != r.task.wordID {
			failed = append(failed, r.task)
			continue
		}
		succeeded = append(succeeded, r.q)
	}
	return succeeded, failed
}

// persistBatch implements stage 5's "persist all successful results in a
// single batch insert and bind their new ids".
func persistBatch(ctx context.Context, db *store.DB, questions []*question.Question) ([]*question.Question, error) {
	if len(questions) == 0 {
		return nil, nil
	}
	rows := make([]store.Row, len(questions))
	for i, q := range questions {
		rows[i] = q.ToRow()
	}
	inserted, err := db.InsertBatch(ctx, questionsTable, rows)
	if err != nil {
		return nil, engerr.WrapPersistError(err, "selection: batch-persist generated questions")
	}
	saved := make([]*question.Question, 0, len(inserted))
	for _, row := range inserted {
		q, err := question.FromRow(row)
		if err != nil {
			continue
		}
		saved = append(saved, q)
	}
	return saved, nil
}

// generateAndPersist is stage 5 end to end.
func generateAndPersist(ctx context.Context, gen *qgen.Service, db *store.DB, userID string, tasks []genTask) ([]*question.Question, []genTask, error) {
	if len(tasks) == 0 {
		return nil, nil, nil
	}
	succeeded, failed := reconcile(dispatchAll(ctx, gen, userID, tasks))
	saved, err := persistBatch(ctx, db, succeeded)
	if err != nil {
		return nil, failed, err
	}
	return saved, failed, nil
}
