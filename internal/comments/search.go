package comments

import "strings"

// SearchIndex holds the matches for one query over one flattening, with a
// cursor that survives rebuilds by tracking the current match by id.
type SearchIndex struct {
	matches    []string
	idToTarget map[string]string
	idToRank   map[string]int
	position   map[string]int
	current    string
}

// NewTextIndex matches entries whose body contains the trimmed, lowercased
// query. An empty query matches nothing.
func NewTextIndex(flat Flattened, query string) *SearchIndex {
	q := strings.ToLower(strings.TrimSpace(query))
	return newIndex(flat, func(e Entry) bool {
		return q != "" && strings.Contains(e.BodyLower, q)
	})
}

// NewUnseenIndex matches entries not yet recorded in blob. Without a record
// for the post nothing counts as unseen, so a first visit is not flooded.
func NewUnseenIndex(flat Flattened, blob string, hasRecord bool) *SearchIndex {
	return newIndex(flat, func(e Entry) bool {
		return hasRecord && !seenIn(blob, e.ID)
	})
}

// seenIn checks blob for id minus its last two characters, which is how
// older clients truncated stored ids.
func seenIn(blob, id string) bool {
	key := id
	if len(key) > 2 {
		key = key[:len(key)-2]
	}
	return strings.Contains(blob, key)
}

func newIndex(flat Flattened, match func(Entry) bool) *SearchIndex {
	ix := &SearchIndex{
		idToTarget: make(map[string]string),
		idToRank:   make(map[string]int),
		position:   make(map[string]int, len(flat.Entries)),
	}
	for i, e := range flat.Entries {
		ix.position[e.ID] = i
		if !match(e) {
			continue
		}
		ix.matches = append(ix.matches, e.ID)
		ix.idToTarget[e.ID] = e.ScrollTargetID
		ix.idToRank[e.ID] = len(ix.matches)
	}
	return ix
}

func (ix *SearchIndex) Matches() []string {
	return append([]string(nil), ix.matches...)
}

func (ix *SearchIndex) Len() int {
	return len(ix.matches)
}

// Target returns the scroll target for a matched id.
func (ix *SearchIndex) Target(id string) (string, bool) {
	t, ok := ix.idToTarget[id]
	return t, ok
}

// Rank is the 1-based position of id among the matches, or 0.
func (ix *SearchIndex) Rank(id string) int {
	return ix.idToRank[id]
}

// Current returns the current match id and its rank, rank 0 meaning none.
func (ix *SearchIndex) Current() (string, int) {
	if ix.idToRank[ix.current] == 0 {
		return "", 0
	}
	return ix.current, ix.idToRank[ix.current]
}

// Next advances the cursor circularly and returns the new match with its
// scroll target. Moving forward from no selection lands on the first
// match, moving backward on the last.
func (ix *SearchIndex) Next(forward bool) (id, target string, ok bool) {
	n := len(ix.matches)
	if n == 0 {
		return "", "", false
	}
	idx := ix.idToRank[ix.current] - 1
	switch {
	case forward:
		idx = (idx + 1) % n
	case idx < 0:
		idx = n - 1
	default:
		idx = (idx - 1 + n) % n
	}
	ix.current = ix.matches[idx]
	return ix.current, ix.idToTarget[ix.current], true
}

// Carry keeps the selection of a previous index when the same id still
// matches.
func (ix *SearchIndex) Carry(prev *SearchIndex) {
	if prev == nil {
		return
	}
	if ix.idToRank[prev.current] > 0 {
		ix.current = prev.current
	}
}

// Track follows manual scrolling. It selects the last visible match when
// scrolling down and the first when scrolling up. With no visible match
// the selection is cleared once the viewport sits above the first match.
func (ix *SearchIndex) Track(visible []string, scrollingDown bool) {
	if len(ix.matches) == 0 || len(visible) == 0 {
		return
	}
	if scrollingDown {
		for i := len(visible) - 1; i >= 0; i-- {
			if ix.idToRank[visible[i]] > 0 {
				ix.current = visible[i]
				return
			}
		}
	} else {
		for _, id := range visible {
			if ix.idToRank[id] > 0 {
				ix.current = id
				return
			}
		}
	}

	first := -1
	for _, id := range visible {
		if pos, ok := ix.position[id]; ok && (first < 0 || pos < first) {
			first = pos
		}
	}
	if first >= 0 && first < ix.position[ix.matches[0]] {
		ix.current = ""
	}
}
