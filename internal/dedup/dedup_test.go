package dedup

import "testing"

func TestSet_AddIsIdempotent(t *testing.T) {
	s := New(0)
	if !s.Add("t3_a") {
		t.Fatal("first add must insert")
	}
	if s.Add("t3_a") {
		t.Fatal("second add must report existing id")
	}
	if !s.Contains("t3_a") || s.Contains("t3_b") {
		t.Fatal("unexpected membership")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 id, got %d", s.Len())
	}
}

func TestSet_CloneIsIndependent(t *testing.T) {
	s := New(1)
	s.Add("t1_a")
	c := s.Clone()
	c.Add("t1_b")
	if s.Contains("t1_b") {
		t.Fatal("clone must not write through to the original")
	}
	if !c.Contains("t1_a") {
		t.Fatal("clone must carry existing ids")
	}
}
