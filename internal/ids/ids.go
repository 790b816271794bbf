// Package ids provides request-scoped identifier generators.
//
// Components never mint identifiers from package-level state; each operation
// receives a Generator so concurrent requests stay independent and tests can
// substitute a deterministic sequence.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator mints identifiers for project entities.
type Generator interface {
	// NewID returns a fresh identifier. prefix names the entity kind
	// ("media", "asset", "clip", ...) and may be ignored by implementations.
	NewID(prefix string) string
}

// UUID returns a generator backed by random UUIDs.
func UUID() Generator { return uuidGenerator{} }

type uuidGenerator struct{}

func (uuidGenerator) NewID(string) string {
	return uuid.NewString()
}

// Sequence produces "<prefix>-<n>" identifiers counting from 1 per prefix.
type Sequence struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewSequence returns an empty deterministic generator.
func NewSequence() *Sequence {
	return &Sequence{counts: make(map[string]int)}
}

func (s *Sequence) NewID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefix == "" {
		prefix = "id"
	}
	s.counts[prefix]++
	return fmt.Sprintf("%s-%d", prefix, s.counts[prefix])
}
