package wrongword

import (
	"reflect"
	"testing"
	"time"
)

func TestPartitionSplitsExistingFromNew(t *testing.T) {
	toIncrement, newIDs := partition([]int32{1, 2, 3, 4}, []int32{2, 4})
	if !reflect.DeepEqual(toIncrement, []int32{2, 4}) {
		t.Fatalf("toIncrement = %v, want [2 4]", toIncrement)
	}
	if !reflect.DeepEqual(newIDs, []int32{1, 3}) {
		t.Fatalf("newIDs = %v, want [1 3]", newIDs)
	}
}

func TestPartitionAllNew(t *testing.T) {
	toIncrement, newIDs := partition([]int32{1, 2}, nil)
	if len(toIncrement) != 0 {
		t.Fatalf("expected no increments, got %v", toIncrement)
	}
	if !reflect.DeepEqual(newIDs, []int32{1, 2}) {
		t.Fatalf("newIDs = %v, want [1 2]", newIDs)
	}
}

func TestPartitionDeduplicates(t *testing.T) {
	toIncrement, newIDs := partition([]int32{1, 1, 2}, []int32{1})
	if !reflect.DeepEqual(toIncrement, []int32{1}) {
		t.Fatalf("toIncrement = %v, want [1]", toIncrement)
	}
	if !reflect.DeepEqual(newIDs, []int32{2}) {
		t.Fatalf("newIDs = %v, want [2]", newIDs)
	}
}

func TestFromRow(t *testing.T) {
	now := time.Now()
	e := fromRow(map[string]any{
		"user_id":         "u1",
		"word_id":         int64(23416),
		"wrong_count":     int64(3),
		"last_wrong_at":   now,
		"wrong_image_url": "https://x/img.png",
	})
	if e.UserID != "u1" || e.WordID != 23416 || e.WrongCount != 3 || e.WrongImageURL == "" {
		t.Fatalf("unexpected edge: %+v", e)
	}
	if !e.LastWrongAt.Equal(now) {
		t.Fatalf("expected last_wrong_at to round-trip")
	}
}
