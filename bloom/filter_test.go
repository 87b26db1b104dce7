package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/lawofone/bloom"
	"github.com/stretchr/testify/assert"
)

func TestSeen_Visit(t *testing.T) {
	t.Parallel()

	s := bloom.NewSeen(bloom.DefaultCapacity, bloom.DefaultFPRate)

	assert.False(t, s.Visit("https://www.llresearch.org/library/a"), "first visit is new")
	assert.True(t, s.Visit("https://www.llresearch.org/library/a"), "second visit is seen")
	assert.False(t, s.Visit("https://www.llresearch.org/library/b"))
	assert.True(t, s.Contains("https://www.llresearch.org/library/b"))
	assert.False(t, s.Contains("https://www.llresearch.org/library/c"))
}

func TestSeen_Count(t *testing.T) {
	t.Parallel()

	s := bloom.NewSeen(bloom.DefaultCapacity, bloom.DefaultFPRate)
	assert.Equal(t, uint(0), s.Count())

	for i := range 3 {
		s.Visit(fmt.Sprintf("https://www.llresearch.org/page/%d", i))
	}
	s.Visit("https://www.llresearch.org/page/0")

	count := s.Count()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestSeen_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	s := bloom.NewSeen(numItems, fpRate)
	for i := range numItems {
		s.Visit(fmt.Sprintf("https://example.com/visited/%d", i))
	}

	falsePositives := 0
	for i := range testProbes {
		if s.Contains(fmt.Sprintf("https://example.com/unvisited/%d", i)) {
			falsePositives++
		}
	}

	// Allow up to 2% for statistical variance.
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
