package question

import "testing"

func TestNewCopyStroke(t *testing.T) {
	q := NewCopyStroke(23416, "學", "https://blob.example/u1")
	if q.AnswerShape != ShapeWriting || q.Writing == nil {
		t.Fatalf("expected writing payload, got %+v", q)
	}
	if q.Writing.TargetChar != "學" || q.Writing.SubmitURL == "" {
		t.Fatalf("unexpected writing payload: %+v", q.Writing)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("copy_stroke failed validation: %v", err)
	}
}

func TestNewListening(t *testing.T) {
	q, err := NewListening(23416, "學", "https://audio.example/u1.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.AnswerShape != ShapeMultiChoice || q.MultiChoice == nil {
		t.Fatalf("expected multi_choice payload, got %+v", q)
	}
	if len(q.MultiChoice.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.MultiChoice.Options))
	}
	if q.GivenMaterial == nil || q.GivenMaterial.Sound == nil {
		t.Fatal("expected given_material with sound URL")
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("listening failed validation: %v", err)
	}
}
