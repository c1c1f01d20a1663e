package service

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	defaultFilterCapacity = 1_000_000
	defaultFilterFPRate   = 0.001
)

// CodeFilter is a bloom filter over existing short codes. The resolver
// consults it for a definite NOT_FOUND fast path before touching
// storage: a miss is authoritative, a hit still requires a lookup.
// Until Seed has run the filter answers "maybe" for every code.
type CodeFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	seeded bool
}

// NewCodeFilter returns a filter sized for the given number of codes.
func NewCodeFilter(capacity uint) *CodeFilter {
	if capacity == 0 {
		capacity = defaultFilterCapacity
	}
	return &CodeFilter{
		filter: bloom.NewWithEstimates(capacity, defaultFilterFPRate),
	}
}

// Seed loads the existing code set and arms the filter.
func (f *CodeFilter) Seed(codes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range codes {
		f.filter.AddString(code)
	}
	f.seeded = true
}

// Add records a newly created code.
func (f *CodeFilter) Add(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(code)
}

// MayContain reports whether the code could exist. Deleted codes keep
// answering true; the storage lookup resolves those.
func (f *CodeFilter) MayContain(code string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.seeded {
		return true
	}
	return f.filter.TestString(code)
}
