// Package comments turns a flat comment listing into a navigable tree with
// search, unseen tracking and lazily expanded "more" placeholders.
package comments

import (
	"strings"
	"time"
	"weak"

	"github.com/glabrego/snoo-cli/internal/entity"
)

// MoreInfo describes the unfetched children behind a placeholder.
type MoreInfo struct {
	Count    int
	ChildIDs []string
}

// RawNode is one element of a flat listing as the transport delivers it,
// in listing order.
type RawNode struct {
	Name      string
	ParentID  string
	Author    string
	Body      string
	Score     int
	CreatedAt time.Time
	More      *MoreInfo
}

// MoreName builds the name of a placeholder. Reddit reuses the first child
// id for "more" things and "_" for every continue-thread link, so the
// parent is folded in to keep names unique within a thread.
func MoreName(parentID, id string) string {
	return "more:" + parentID + ":" + id
}

type Node struct {
	ID        string
	ParentID  string
	Depth     int
	Author    string
	Body      string
	Score     int
	CreatedAt time.Time
	Collapsed bool
	// More is set on placeholders, which have no body.
	More     *MoreInfo
	Children []*Node

	parent weak.Pointer[Node]
}

func (n *Node) IsMore() bool {
	return n.More != nil
}

// Parent returns the node this one hangs under, or nil for a top-level node.
// The reference is weak; ownership runs strictly from parent to children.
func (n *Node) Parent() *Node {
	return n.parent.Value()
}

func (n *Node) setParent(p *Node) {
	if p == nil {
		n.parent = weak.Pointer[Node]{}
		return
	}
	n.parent = weak.Make(p)
}

// Build links raw nodes into a forest. Nodes whose ParentID equals
// rootParentID become the returned roots, linked to parent (nil for a
// post's top level); the caller decides where the roots are placed.
// Every other node is appended to its parent's Children in input order.
// Nodes naming rootParentID itself are dropped, as are nodes whose parent
// is missing from the batch. The returned map covers every kept node.
func Build(raw []RawNode, rootParentID string, parent *Node) ([]*Node, map[string]*Node) {
	marker := rootMarker(rootParentID)
	byName := make(map[string]*Node, len(raw))
	ordered := make([]*Node, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" || r.Name == rootParentID {
			continue
		}
		if marker != "" && strings.HasSuffix(r.Name, marker) {
			continue
		}
		if _, dup := byName[r.Name]; dup {
			continue
		}
		n := &Node{
			ID:        r.Name,
			ParentID:  r.ParentID,
			Author:    r.Author,
			Body:      r.Body,
			Score:     r.Score,
			CreatedAt: r.CreatedAt,
			More:      r.More,
		}
		byName[r.Name] = n
		ordered = append(ordered, n)
	}

	roots := make([]*Node, 0, len(ordered))
	for _, n := range ordered {
		if n.ParentID == rootParentID {
			n.setParent(parent)
			roots = append(roots, n)
			continue
		}
		p, ok := byName[n.ParentID]
		if !ok || p == n || p.IsMore() {
			continue
		}
		n.setParent(p)
		p.Children = append(p.Children, n)
	}

	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}
	for _, r := range roots {
		setDepth(r, depth)
	}
	return roots, byName
}

// rootMarker is the bare id suffix shared by every name that refers to
// the root itself, whatever its kind prefix.
func rootMarker(rootParentID string) string {
	kind, id := entity.SplitFullname(rootParentID)
	if kind == "" || id == "" {
		return ""
	}
	return "_" + id
}

func setDepth(n *Node, depth int) {
	n.Depth = depth
	for _, c := range n.Children {
		setDepth(c, depth+1)
	}
}

// walk visits nodes in pre-order. Returning false from fn skips the
// node's children.
func walk(nodes []*Node, fn func(n *Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			walk(n.Children, fn)
		}
	}
}

func countNodes(nodes []*Node) int {
	count := 0
	walk(nodes, func(*Node) bool {
		count++
		return true
	})
	return count
}
