// Package nodeid generates the identities shared by a node and its table row.
//
// An id has the form {type}-{ulid}. The ULID encodes a millisecond timestamp
// followed by random entropy; entropy is monotonic within a millisecond, so
// ids stay unique and sortable even when a paste creates many nodes at once.
package nodeid

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces node ids. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewGenerator returns a generator reading entropy from crypto/rand.
func NewGenerator() *Generator {
	return NewGeneratorWith(time.Now, rand.Reader)
}

// NewGeneratorWith returns a generator with an injected clock and entropy source.
func NewGeneratorWith(now func() time.Time, entropy io.Reader) *Generator {
	return &Generator{
		now:     now,
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// New returns a fresh id for a node of the given type.
func (g *Generator) New(nodeType string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		// Monotonic entropy overflowed within one millisecond; fall back to a
		// fresh random read, which only loses ordering, not uniqueness.
		id = ulid.MustNew(ulid.Timestamp(g.now()), rand.Reader)
	}
	return nodeType + "-" + id.String()
}

var defaultGenerator = NewGenerator()

// New returns a fresh id from the process-wide generator.
func New(nodeType string) string {
	return defaultGenerator.New(nodeType)
}

// TypeOf returns the type prefix of an id, or "" when the id has none.
func TypeOf(id string) string {
	prefix, _, ok := strings.Cut(id, "-")
	if !ok {
		return ""
	}
	return prefix
}

// Time returns the creation time encoded in an id produced by a Generator.
func Time(id string) (time.Time, bool) {
	_, rest, ok := strings.Cut(id, "-")
	if !ok {
		return time.Time{}, false
	}
	u, err := ulid.ParseStrict(rest)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()), true
}

// Valid reports whether id has the {type}-{ulid} shape produced by a Generator.
func Valid(id string) bool {
	prefix, rest, ok := strings.Cut(id, "-")
	if !ok || prefix == "" {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}
