package calculator

import (
	"errors"
	"fmt"
	"math"

	"TranchePlanner/internal/model"
)

var (
	// ErrInvalidStep is returned when the level step is not positive.
	ErrInvalidStep = errors.New("step must be positive")
	// ErrBoundOutOfRange is returned for a NaN, infinite or oversized bound.
	ErrBoundOutOfRange = errors.New("price bound out of range")
)

// MaxBound is the largest absolute price a level bound may take.
const MaxBound = math.MaxInt32

// PriceLevels returns the descending levels from the larger bound down to the
// smaller one, inclusive, spaced by step. Bounds may be passed in either order.
// Both bounds are truncated to whole prices before stepping.
func PriceLevels(start, end float64, step int) ([]model.PriceLevel, error) {
	if step <= 0 {
		return nil, ErrInvalidStep
	}
	for _, b := range []float64{start, end} {
		if math.IsNaN(b) || math.Abs(b) > MaxBound {
			return nil, fmt.Errorf("%w: %v", ErrBoundOutOfRange, b)
		}
	}
	if end > start {
		start, end = end, start
	}
	hi := int(math.Trunc(start))
	lo := int(math.Trunc(end))

	levels := make([]model.PriceLevel, 0, (hi-lo)/step+1)
	for p := hi; p >= lo; p -= step {
		levels = append(levels, model.PriceLevel(p))
	}
	return levels, nil
}
