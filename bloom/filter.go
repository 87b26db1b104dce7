// Package bloom tracks the links already followed during a corpus build.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Default sizing for one build of the article sections.
const (
	DefaultCapacity = 1000
	DefaultFPRate   = 0.01
)

// Seen is a probabilistic set of visited URLs. A URL reported as unseen
// has definitely not been visited; one reported as seen may be a false
// positive at the configured rate.
type Seen struct {
	f *bloom.BloomFilter
}

// NewSeen creates a set sized for n expected URLs at the given false
// positive rate.
func NewSeen(n uint, fpRate float64) *Seen {
	return &Seen{f: bloom.NewWithEstimates(n, fpRate)}
}

// Visit marks url as visited and reports whether it was possibly
// visited before.
func (s *Seen) Visit(url string) bool {
	return s.f.TestAndAddString(url)
}

// Contains reports whether url was possibly visited.
func (s *Seen) Contains(url string) bool {
	return s.f.TestString(url)
}

// Count returns the approximate number of visited URLs.
func (s *Seen) Count() uint {
	return uint(s.f.ApproximatedSize())
}
