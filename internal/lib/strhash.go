package lib

import "sync"

// StrHasher gives a unique int to each unique string, starting at 1. It stores a
// map of [string]int rather than hashing, so two strings can never collide;
// the pick buffer relies on that to turn ids into distinct colours.
type StrHasher struct {
	mu      *sync.Mutex
	ids     map[string]int
	counter int
}

func NewStrHasher() *StrHasher {
	return &StrHasher{
		mu:      &sync.Mutex{},
		ids:     make(map[string]int),
		counter: 0,
	}
}

// Hash returns a unique int for each unique string.
func (s *StrHasher) Hash(str string) (id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	if id, ok = s.ids[str]; !ok {
		id = s.counter + 1
		s.counter = id
		s.ids[str] = id
	}
	return id
}

// Len is the number of distinct strings seen.
func (s *StrHasher) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
