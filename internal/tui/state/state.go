package state

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// FollowCursor scrolls top the least amount needed to show the line span
// [first, last] in a window of height lines. A span taller than the window
// can be scrolled through, as long as the window stays inside it.
func FollowCursor(top, first, last, height, maxTop int) int {
	if height <= 0 {
		return 0
	}
	if last-first+1 > height {
		top = max(first, min(top, last-height+1))
	} else {
		if last >= top+height {
			top = last - height + 1
		}
		if first < top {
			top = first
		}
	}
	if top > maxTop {
		top = maxTop
	}
	if top < 0 {
		top = 0
	}
	return top
}

// Leaving returns the indices of prev that are not part of next. Both are
// half-open index windows.
func Leaving(prevStart, prevEnd, nextStart, nextEnd int) []int {
	var out []int
	for i := prevStart; i < prevEnd; i++ {
		if i < nextStart || i >= nextEnd {
			out = append(out, i)
		}
	}
	return out
}
