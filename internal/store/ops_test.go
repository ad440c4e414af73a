package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hanzidojo/engine/internal/engerr"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]any{"b": 1, "a": 2, "c": 3}
	got := sortedKeys(m)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedKeys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEncodeValueJSONColumn(t *testing.T) {
	v, err := encodeValue("given_material", map[string]string{"text": "hi"})
	if err != nil {
		t.Fatalf("encodeValue: %v", err)
	}
	b, ok := v.([]byte)
	if !ok {
		t.Fatalf("expected []byte, got %T", v)
	}
	if string(b) != `{"text":"hi"}` {
		t.Fatalf("got %s", b)
	}
}

func TestEncodeValueNonJSONColumnPassthrough(t *testing.T) {
	v, err := encodeValue("prompt", "some text")
	if err != nil {
		t.Fatalf("encodeValue: %v", err)
	}
	if v != "some text" {
		t.Fatalf("expected passthrough, got %v", v)
	}
}

func TestIsJSONColumn(t *testing.T) {
	if !isJSONColumn("mc_choices") {
		t.Fatal("expected mc_choices to be a JSON column")
	}
	if isJSONColumn("prompt") {
		t.Fatal("expected prompt to not be a JSON column")
	}
}

func TestWriteWhereClause(t *testing.T) {
	var b strings.Builder
	placeholder := 1
	writeWhereClause(&b, []string{"a", "b"}, &placeholder)
	got := b.String()
	want := " WHERE a = $1 AND b = $2"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEngerrQueryClassifiesAsQueryKind(t *testing.T) {
	err := engerrQuery(nil, "bad input: %s", "oops")
	if !errors.Is(err, &engerr.Error{Kind: engerr.KindQuery}) {
		t.Fatalf("expected KindQuery, got %v (%s)", engerr.KindOf(err), err)
	}
}

func TestClassifyContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	err := classify(ctx.Err(), "test op")
	if engerr.KindOf(err) != engerr.KindTimeout {
		t.Fatalf("expected KindTimeout, got %v", engerr.KindOf(err))
	}
}
