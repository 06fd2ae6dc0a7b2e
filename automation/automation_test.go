package automation

import "testing"

func TestNotchesFor(t *testing.T) {
	cases := []struct {
		pixels float64
		want   int
	}{
		{0, 0},
		{-100, 0},
		{1, 1},
		{39, 1},
		{40, 1},
		{60, 2},
		{400, 10},
		{648, 16}, // a 720px viewport with 10% overlap
	}
	for _, tc := range cases {
		if got := notchesFor(tc.pixels); got != tc.want {
			t.Errorf("notchesFor(%g) = %d, want %d", tc.pixels, got, tc.want)
		}
	}
}

func TestItoaRounds(t *testing.T) {
	if got := itoa(99.6); got != "100" {
		t.Errorf("itoa(99.6) = %q", got)
	}
	if got := itoa(99.2); got != "99" {
		t.Errorf("itoa(99.2) = %q", got)
	}
}
