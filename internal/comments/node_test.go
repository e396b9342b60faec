package comments

import (
	"reflect"
	"testing"
)

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildLinksChildrenInInputOrder(t *testing.T) {
	raw := []RawNode{
		{Name: "t1_a", ParentID: "t3_p"},
		{Name: "t1_b", ParentID: "t1_a"},
		{Name: "t1_c", ParentID: "t3_p"},
		{Name: "t1_d", ParentID: "t1_b"},
		{Name: "t1_e", ParentID: "t1_a"},
	}
	roots, byName := Build(raw, "t3_p", nil)

	if got, want := ids(roots), []string{"t1_a", "t1_c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("roots = %v, want %v", got, want)
	}
	if got, want := ids(byName["t1_a"].Children), []string{"t1_b", "t1_e"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("children of a = %v, want %v", got, want)
	}
	if byName["t1_d"].Depth != 2 {
		t.Fatalf("depth of d = %d, want 2", byName["t1_d"].Depth)
	}
	if byName["t1_d"].Parent() != byName["t1_b"] {
		t.Fatalf("parent of d = %v, want b", byName["t1_d"].Parent())
	}
	if roots[0].Parent() != nil {
		t.Fatalf("top-level node should have no parent")
	}
}

func TestBuildDropsOrphansAndSelfReferences(t *testing.T) {
	raw := []RawNode{
		{Name: "t1_b", ParentID: "t1_a"},
		{Name: "t3_b", ParentID: "t1_b"},
		{Name: "t1_c", ParentID: "t1_b"},
		{Name: "t1_lost", ParentID: "t1_missing"},
		{Name: "t1_child", ParentID: "t1_lost"},
	}
	roots, byName := Build(raw, "t1_b", nil)

	if got, want := ids(roots), []string{"t1_c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("roots = %v, want %v", got, want)
	}
	if _, ok := byName["t1_b"]; ok {
		t.Fatalf("expected root itself to be excluded")
	}
	if _, ok := byName["t3_b"]; ok {
		t.Fatalf("expected same-id name of another kind to be excluded")
	}
}

func TestBuildUnderParentContinuesDepth(t *testing.T) {
	parent := &Node{ID: "t1_a", Depth: 3}
	raw := []RawNode{
		{Name: "t1_x", ParentID: "t1_a"},
		{Name: "t1_y", ParentID: "t1_x"},
	}
	roots, byName := Build(raw, "t1_a", parent)

	if len(roots) != 1 || roots[0].Depth != 4 || byName["t1_y"].Depth != 5 {
		t.Fatalf("unexpected depths: roots=%v y=%d", ids(roots), byName["t1_y"].Depth)
	}
	if roots[0].Parent() != parent {
		t.Fatalf("expected grafted root to point at parent")
	}
}

func TestBuildKeepsPlaceholders(t *testing.T) {
	raw := []RawNode{
		{Name: "t1_a", ParentID: "t3_p"},
		{Name: MoreName("t1_a", "_"), ParentID: "t1_a", More: &MoreInfo{}},
		{Name: MoreName("t3_p", "q"), ParentID: "t3_p", More: &MoreInfo{Count: 4, ChildIDs: []string{"q"}}},
	}
	roots, byName := Build(raw, "t3_p", nil)

	if len(roots) != 2 || !roots[1].IsMore() {
		t.Fatalf("expected trailing top-level placeholder, got %v", ids(roots))
	}
	if !byName[MoreName("t1_a", "_")].IsMore() || byName[MoreName("t1_a", "_")].Depth != 1 {
		t.Fatalf("expected nested placeholder at depth 1")
	}
}
