package word

import "testing"

func TestCodepointOf(t *testing.T) {
	cases := []struct {
		char string
		want int32
	}{
		{"學", 0x5B78},
		{"火", 0x706B},
		{"", 0},
	}
	for _, tc := range cases {
		if got := CodepointOf(tc.char); got != tc.want {
			t.Errorf("CodepointOf(%q) = %#x, want %#x", tc.char, got, tc.want)
		}
	}
}

func TestAsInt32Conversions(t *testing.T) {
	cases := []struct {
		in   any
		want int32
	}{
		{int32(5), 5},
		{int64(5), 5},
		{5, 5},
		{float64(5), 5},
		{"not a number", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := asInt32(tc.in); got != tc.want {
			t.Errorf("asInt32(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
