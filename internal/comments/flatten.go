package comments

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// ShortCommentLines is the largest estimated height, in lines, that still
	// counts as a short comment for scroll targeting.
	ShortCommentLines = 4
	charsPerLine      = 40
)

// Entry is one comment in display order.
type Entry struct {
	ID        string
	BodyLower string
	// ScrollTargetID is the entry to bring to the top of the viewport when
	// jumping to this one, so that short context above it stays visible.
	ScrollTargetID string
}

type Flattened struct {
	Entries []Entry
	// MorePositions maps each visible placeholder to the index the next
	// real entry takes, which is where the placeholder is drawn.
	MorePositions map[string]int
	position      map[string]int
}

// Position returns the index of a real entry.
func (f Flattened) Position(id string) (int, bool) {
	i, ok := f.position[id]
	return i, ok
}

// ApproxLines estimates rendered height: explicit newlines plus one line per
// charsPerLine remaining characters, plus one.
func ApproxLines(body string) int {
	newlines := strings.Count(body, "\n")
	rest := utf8.RuneCountInString(body) - newlines
	return newlines + int(math.Round(float64(rest)/charsPerLine)) + 1
}

func isShort(lines int) bool {
	return lines <= ShortCommentLines
}

// Flatten walks roots in pre-order. Children of collapsed nodes and the
// placeholders themselves are left out of Entries.
func Flatten(roots []*Node) Flattened {
	f := &flattener{
		out: Flattened{
			MorePositions: make(map[string]int),
			position:      make(map[string]int),
		},
	}
	f.siblings(roots, "")
	return f.out
}

type flattener struct {
	out       Flattened
	lastID    string
	lastLines int
}

// siblings emits one sibling list and returns the total estimated lines
// emitted for it, descendants included.
func (f *flattener) siblings(nodes []*Node, inherited string) int {
	total := 0
	var (
		prev          *Node
		prevLines     int
		prevTotal     int
		prevLastID    string
		prevLastLines int
	)
	for _, n := range nodes {
		if n.IsMore() {
			f.out.MorePositions[n.ID] = len(f.out.Entries)
			continue
		}

		target := n.ID
		switch {
		case prev != nil && prevTotal > ShortCommentLines && prevLastID != "" && isShort(prevLastLines):
			target = prevLastID
		case prev != nil && isShort(prevLines):
			target = prev.ID
		case inherited != "":
			target = inherited
		}

		lines := ApproxLines(n.Body)
		f.out.position[n.ID] = len(f.out.Entries)
		f.out.Entries = append(f.out.Entries, Entry{
			ID:             n.ID,
			BodyLower:      strings.ToLower(n.Body),
			ScrollTargetID: target,
		})
		f.lastID, f.lastLines = n.ID, lines

		subtotal := lines
		lastID, lastLines := "", 0
		if !n.Collapsed && len(n.Children) > 0 {
			childTarget := ""
			if isShort(lines) {
				childTarget = n.ID
			}
			before := len(f.out.Entries)
			subtotal += f.siblings(n.Children, childTarget)
			if len(f.out.Entries) > before {
				lastID, lastLines = f.lastID, f.lastLines
			}
		}

		prev, prevLines, prevTotal = n, lines, subtotal
		prevLastID, prevLastLines = lastID, lastLines
		total += subtotal
	}
	return total
}
