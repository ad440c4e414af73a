package gamesession

import (
	"testing"
	"time"

	"github.com/hanzidojo/engine/internal/question"
	"github.com/hanzidojo/engine/internal/store"
)

func TestIsCorrectMultiChoice(t *testing.T) {
	q := &question.Question{
		AnswerShape: question.ShapeMultiChoice,
		MultiChoice: &question.MultiChoicePayload{
			Answers: []question.AnswerTuple{{ChoiceIDs: []string{"a"}}},
		},
	}
	correct, err := isCorrect(q, Answer{MultiChoiceIDs: []string{"a"}})
	if err != nil || !correct {
		t.Fatalf("isCorrect = %v, %v; want true, nil", correct, err)
	}
	wrong, err := isCorrect(q, Answer{MultiChoiceIDs: []string{"b"}})
	if err != nil || wrong {
		t.Fatalf("isCorrect = %v, %v; want false, nil", wrong, err)
	}
}

func TestIsCorrectPairing(t *testing.T) {
	q := &question.Question{
		AnswerShape: question.ShapePairing,
		Pairing: &question.PairingPayload{
			Pairs: []question.Pair{
				{PairID: "p1", A: question.PairOption{ID: "A1"}, B: question.PairOption{ID: "B1"}},
				{PairID: "p2", A: question.PairOption{ID: "A2"}, B: question.PairOption{ID: "B2"}},
			},
		},
	}
	correct, err := isCorrect(q, Answer{Pairs: [][2]string{{"B2", "A2"}, {"A1", "B1"}}})
	if err != nil || !correct {
		t.Fatalf("isCorrect = %v, %v; want true, nil", correct, err)
	}
}

func TestIsCorrectWritingPassesVerdictThrough(t *testing.T) {
	q := &question.Question{AnswerShape: question.ShapeWriting}
	correct, err := isCorrect(q, Answer{WritingCorrect: true})
	if err != nil || !correct {
		t.Fatalf("isCorrect = %v, %v; want true, nil", correct, err)
	}
	wrong, err := isCorrect(q, Answer{WritingCorrect: false})
	if err != nil || wrong {
		t.Fatalf("isCorrect = %v, %v; want false, nil", wrong, err)
	}
}

func TestIsCorrectMissingPayloadIsInternalError(t *testing.T) {
	q := &question.Question{ID: "q1", AnswerShape: question.ShapeMultiChoice}
	if _, err := isCorrect(q, Answer{MultiChoiceIDs: []string{"a"}}); err == nil {
		t.Fatal("expected an error for a missing multi_choice payload")
	}
}

func TestAnswerPayloadShapesByKind(t *testing.T) {
	mc := answerPayload(Answer{MultiChoiceIDs: []string{"a", "b"}})
	if _, ok := mc["choice_ids"]; !ok {
		t.Fatalf("answerPayload(multi_choice) = %v, want choice_ids key", mc)
	}

	pairing := answerPayload(Answer{Pairs: [][2]string{{"A1", "B1"}}})
	if _, ok := pairing["pairs"]; !ok {
		t.Fatalf("answerPayload(pairing) = %v, want pairs key", pairing)
	}

	writing := answerPayload(Answer{WritingCorrect: true})
	if v, ok := writing["is_correct"]; !ok || v != true {
		t.Fatalf("answerPayload(writing) = %v, want is_correct=true", writing)
	}
}

func TestFromRowMapsKnownColumns(t *testing.T) {
	now := time.Now().UTC()
	row := store.Row{
		"id":               "d1",
		"game_id":          "g1",
		"user_id":          "u1",
		"earned_exp":       int64(20),
		"time_spent_ms":    int64(5000),
		"total_score":      20,
		"question_count":   3,
		"remaining_hearts": 2,
		"correct_count":    2,
		"created_at":       now,
	}
	d := fromRow(row)
	if d.ID != "d1" || d.GameID != "g1" || d.UserID != "u1" {
		t.Fatalf("fromRow identity fields = %+v", d)
	}
	if d.EarnedExp != 20 || d.TimeSpentMs != 5000 || d.TotalScore != 20 {
		t.Fatalf("fromRow numeric fields = %+v", d)
	}
	if d.QuestionCount != 3 || d.RemainingHearts != 2 || d.CorrectCount != 2 {
		t.Fatalf("fromRow count fields = %+v", d)
	}
	if !d.CreatedAt.Equal(now) {
		t.Fatalf("fromRow created_at = %v, want %v", d.CreatedAt, now)
	}
}
