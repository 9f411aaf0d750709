package testutil

import (
	"fmt"
	"sync"
)

// SeqIDs issues predictable node ids: {type}-1, {type}-2, ...
// The counter is shared across types.
type SeqIDs struct {
	mu sync.Mutex
	n  int
}

// New returns the next id for nodeType.
func (s *SeqIDs) New(nodeType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", nodeType, s.n)
}
