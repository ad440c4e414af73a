package collab

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

type fakeRecognizer struct {
	result *HandwriteResult
	err    error
}

func (f *fakeRecognizer) RecognizeHandwriting(ctx context.Context, imageRef, targetChar, userID string) (*HandwriteResult, error) {
	return f.result, f.err
}

type fakeScanner struct {
	result *ScanResult
	err    error
}

func (f *fakeScanner) ScanPage(ctx context.Context, imageRef, userID string) (*ScanResult, error) {
	return f.result, f.err
}

func TestRecognizeHandwritingPassesThroughRecognizer(t *testing.T) {
	want := &HandwriteResult{IsCorrect: true}
	s := New(&fakeRecognizer{result: want}, nil, nil, zerolog.Nop())

	got, err := s.RecognizeHandwriting(context.Background(), "ref", "字", "u1")
	if err != nil {
		t.Fatalf("RecognizeHandwriting: %v", err)
	}
	if got != want {
		t.Fatalf("RecognizeHandwriting = %v, want %v", got, want)
	}
}

func TestScanAndRecordShortCircuitsOnNoRecognizedItems(t *testing.T) {
	result := &ScanResult{NotFound: []ScanItem{{Char: "字"}}}
	s := New(nil, &fakeScanner{result: result}, nil, zerolog.Nop())

	got, err := s.ScanAndRecord(context.Background(), "ref", "u1")
	if err != nil {
		t.Fatalf("ScanAndRecord: %v", err)
	}
	if got != result {
		t.Fatalf("ScanAndRecord = %v, want %v (no wrongwords call needed)", got, result)
	}
}

func TestScanAndRecordPropagatesScannerError(t *testing.T) {
	wantErr := context.DeadlineExceeded
	s := New(nil, &fakeScanner{err: wantErr}, nil, zerolog.Nop())

	if _, err := s.ScanAndRecord(context.Background(), "ref", "u1"); err != wantErr {
		t.Fatalf("ScanAndRecord error = %v, want %v", err, wantErr)
	}
}
