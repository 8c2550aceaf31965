// Package loader implements the smoothed-K adaptive flush policy from
// spec.md §4.3, ported from
// original_source/fsm-core/src/model/loading_strategy.rs with its constants
// and algorithm preserved exactly: ALPHA=0.25, K_INIT=0.5, a 16,670µs default
// frame budget (60Hz), and one K estimate per sort mode.
package loader

import (
	"math"
	"time"
)

// alpha is the exponential smoothing factor. Part of the contract per
// spec.md §4.3: changing it changes steady-state responsiveness.
const alpha = 0.25

// kInit is the conservative initial cost estimate, in microseconds per
// N*log2(N).
const kInit = 0.5

// DefaultBudget is the default per-flush frame budget B (60Hz).
const DefaultBudget = 16_670 * time.Microsecond

// SortMode enumerates the sort modes that each keep their own K estimate,
// mirroring original_source's EntrySort enum (NameAsc/NameDesc/SizeAsc/
// SizeDesc/ModifiedAsc/ModifiedDesc/Custom).
type SortMode int

const (
	SortNameAsc SortMode = iota
	SortNameDesc
	SortSizeAsc
	SortSizeDesc
	SortModifiedAsc
	SortModifiedDesc
	SortCustom

	sortModeCount
)

// Strategy is the smoothed-K adaptive loading strategy. It is not safe for
// concurrent use without external synchronization; callers (the pane's
// incremental-staging path) own it single-threaded per pane.
type Strategy struct {
	k      [sortModeCount]float64
	budget time.Duration
}

// New creates a strategy with the default 60Hz budget and K_INIT seeded for
// every sort mode.
func New() *Strategy {
	return NewWithBudget(DefaultBudget)
}

// NewWithBudget creates a strategy with a custom frame budget.
func NewWithBudget(budget time.Duration) *Strategy {
	s := &Strategy{budget: budget}
	for i := range s.k {
		s.k[i] = kInit
	}
	return s
}

// ShouldFlush decides whether to flush a staging buffer of n rows under the
// given sort mode, per spec.md §4.3 policy:
//  1. never flush an empty buffer;
//  2. always flush a singleton when asked;
//  3. otherwise flush when the predicted cost p = K*n*log2(n) >= budget.
func (s *Strategy) ShouldFlush(n int, mode SortMode) bool {
	if n <= 0 {
		return false
	}
	if n == 1 {
		return true
	}
	predicted := s.predictedCost(n, mode)
	return predicted >= float64(s.budget.Microseconds())
}

// predictedCost returns K*n*log2(n) in microseconds for n >= 2.
func (s *Strategy) predictedCost(n int, mode SortMode) float64 {
	nf := float64(n)
	return s.k[mode] * nf * math.Log2(nf)
}

// PredictSortTime returns the predicted cost as a duration; zero for n<=1
// per the original's predict_sort_time.
func (s *Strategy) PredictSortTime(n int, mode SortMode) time.Duration {
	if n <= 1 {
		return 0
	}
	return time.Duration(s.predictedCost(n, mode)) * time.Microsecond
}

// RegisterSortTime updates K for mode by exponential smoothing after an
// actual sort of n rows took elapsed. n<=1 is treated as linear cost (the
// measured duration itself, per spec.md §4.3 special case 3).
func (s *Strategy) RegisterSortTime(n int, mode SortMode, elapsed time.Duration) {
	elapsedUs := float64(elapsed.Microseconds())
	var measured float64
	if n <= 1 {
		measured = elapsedUs
	} else {
		nf := float64(n)
		measured = elapsedUs / (nf * math.Log2(nf))
	}
	s.k[mode] = alpha*measured + (1-alpha)*s.k[mode]
}

// K returns the current cost estimate for mode (for tests/metrics).
func (s *Strategy) K(mode SortMode) float64 {
	return s.k[mode]
}

// Budget returns the configured frame budget.
func (s *Strategy) Budget() time.Duration {
	return s.budget
}

// SetBudget overrides the frame budget at runtime.
func (s *Strategy) SetBudget(b time.Duration) {
	s.budget = b
}
