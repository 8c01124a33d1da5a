package mocks

import (
	"github.com/tankarena/lobby-server/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex >= len(r.StringResults) {
		return ""
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}
