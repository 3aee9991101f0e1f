// Package partition splits a total amount into randomized positive sub-amounts.
package partition

import (
	"math/rand"

	"github.com/songii00/random-push/internal/domain"
)

const (
	// drawOffset is added to every random draw before rounding.
	drawOffset = 11
	// roundingUnit truncates each draw down to the nearest multiple of 10.
	roundingUnit = 10
)

// Splitter draws randomized sub-amounts. The randomness source is injectable so
// tests can pin the draws.
type Splitter struct {
	rand func() float64
}

// NewSplitter creates a Splitter backed by math/rand.
func NewSplitter() *Splitter {
	return &Splitter{rand: rand.Float64}
}

// NewSplitterWithSource creates a Splitter with a custom randomness source.
// src must return values in [0.0, 1.0).
func NewSplitterWithSource(src func() float64) *Splitter {
	return &Splitter{rand: src}
}

// Split partitions total into count sub-amounts that sum exactly to total.
//
// Each of the first count-1 amounts is drawn uniformly in [0, remaining/count),
// shifted by a fixed offset and truncated down to a multiple of 10. The final
// amount takes whatever remains, which guarantees the exact sum but skews its
// distribution: it is usually the largest, is the only amount that may not be a
// multiple of 10, and can be non-positive when count is large relative to total.
// Callers that need strictly positive shares must validate their inputs
// (total well above count*10) before calling.
func (s *Splitter) Split(total, count int) ([]int, error) {
	if total <= 0 || count <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	amounts := make([]int, 0, count)
	remaining := total
	for i := 0; i < count; i++ {
		if i == count-1 {
			amounts = append(amounts, remaining)
			continue
		}

		amount := int(s.rand()*float64(remaining/count)) + drawOffset
		amount -= amount % roundingUnit
		remaining -= amount
		amounts = append(amounts, amount)
	}
	return amounts, nil
}
