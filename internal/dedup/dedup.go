// Package dedup tracks which fullnames have already been ingested.
package dedup

// Set is a plain string set. The zero value is not usable; call New.
type Set struct {
	ids map[string]struct{}
}

func New(capacity int) *Set {
	return &Set{ids: make(map[string]struct{}, capacity)}
}

// Add reports whether id was newly inserted. An id that is already present
// leaves the set untouched.
func (s *Set) Add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Len() int {
	return len(s.ids)
}

// Clone returns an independent copy, used as the working buffer of a
// pagination run so an abandoned run never touches the published set.
func (s *Set) Clone() *Set {
	out := New(len(s.ids))
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	return out
}
