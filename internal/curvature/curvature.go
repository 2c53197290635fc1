// Package curvature turns optimizer trajectories into curvature pairs. It
// implements the two pair-update disciplines used by the stochastic
// quasi-Newton methods — Hessian-vector products over averaged iterates, and
// per-step gradient differencing — together with Powell damping and the
// adaQN Fisher accumulator.
package curvature

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// StepInfo carries one completed optimizer step to a strategy.
type StepInfo struct {
	WPrev   []float64 // iterate before the step
	W       []float64 // iterate after the step; adaQN may roll it back in place
	Grad    []float64 // stochastic gradient at WPrev on Indices
	Indices []int     // batch the gradient was evaluated on
}

// Strategy folds optimizer steps into a curvature model. The training loop
// calls AfterStep once per inner iteration, after the iterate has moved.
type Strategy interface {
	AfterStep(info StepInfo)
}

// SampleWithReplacement draws k indices uniformly from {0,…,m−1}.
func SampleWithReplacement(rng *rand.Rand, m, k int) []int {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = rng.Intn(m)
	}
	return idx
}

// PowellDamp applies Powell's damping to the pair (s, y) given hy, the
// current model applied to y. With lhs = s·y and rhs = 0.2·(y·hy),
//
//	theta = 1                        if lhs ≥ rhs
//	theta = 4·rhs / (rhs/0.2 − lhs)  otherwise
//
// and the damped step r = theta·s + (1−theta)·hy is written into r. The
// returned theta lies in [0, 1] whenever the model is positive along y; a
// non-positive denominator falls back to theta = 1.
func PowellDamp(r, s, y, hy []float64) float64 {
	lhs := floats.Dot(s, y)
	rhs := 0.2 * floats.Dot(y, hy)

	theta := 1.0
	if lhs < rhs && rhs > 0 {
		denom := rhs/0.2 - lhs
		if denom > 0 {
			theta = 4 * rhs / denom
		}
	}
	for i := range r {
		r[i] = theta*s[i] + (1-theta)*hy[i]
	}
	return theta
}
