package state

import (
	"reflect"
	"testing"
)

func TestClampCursor(t *testing.T) {
	if got := ClampCursor(-1, 3); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampCursor(3, 3); got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}
	if got := ClampCursor(1, 3); got != 1 {
		t.Fatalf("expected keep 1, got %d", got)
	}
}

func TestCenteredWindow(t *testing.T) {
	start, end := CenteredWindow(5, 3, 3)
	if start != 2 || end != 5 {
		t.Fatalf("unexpected window: start=%d end=%d", start, end)
	}
	start, end = CenteredWindow(2, 1, 10)
	if start != 0 || end != 2 {
		t.Fatalf("expected whole list for short feed, got %d..%d", start, end)
	}
}

func TestFollowCursor(t *testing.T) {
	cases := []struct {
		name                             string
		top, first, last, height, maxTop int
		want                             int
	}{
		{name: "already visible", top: 0, first: 2, last: 3, height: 10, maxTop: 50, want: 0},
		{name: "below window", top: 0, first: 12, last: 14, height: 10, maxTop: 50, want: 5},
		{name: "above window", top: 20, first: 4, last: 5, height: 10, maxTop: 50, want: 4},
		{name: "taller than window", top: 0, first: 8, last: 30, height: 10, maxTop: 50, want: 8},
		{name: "inside tall span", top: 15, first: 8, last: 30, height: 10, maxTop: 50, want: 15},
		{name: "past tall span", top: 28, first: 8, last: 30, height: 10, maxTop: 50, want: 21},
		{name: "clamped to max", top: 0, first: 48, last: 49, height: 10, maxTop: 40, want: 40},
	}
	for _, tc := range cases {
		if got := FollowCursor(tc.top, tc.first, tc.last, tc.height, tc.maxTop); got != tc.want {
			t.Fatalf("%s: FollowCursor = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestLeaving(t *testing.T) {
	if got, want := Leaving(0, 5, 2, 7), []int{0, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Leaving = %v, want %v", got, want)
	}
	if got := Leaving(2, 4, 0, 10); got != nil {
		t.Fatalf("expected nothing leaving, got %v", got)
	}
}
