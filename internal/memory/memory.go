// Package memory maintains the curvature state of a stochastic quasi-Newton
// run: a bounded window of (s, y) curvature pairs with the two-loop recursion
// for limited-memory methods, and an explicit dense Hessian approximation for
// the full-memory BFGS family.
package memory

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// machEps is the double-precision machine epsilon.
const machEps = 2.220446049250313e-16

// SqrtEps is the conventional threshold for "numerically zero" curvature,
// shared by the acceptance tests in the update strategies.
var SqrtEps = math.Sqrt(machEps)

// Init selects how the inverse-Hessian seed H0 of the two-loop recursion is
// formed.
type Init int

const (
	// InitBB scales H0 by the Barzilai-Borwein ratio of the newest pair,
	// (s·y)/(y·y). With no stored pairs H0 is the identity.
	InitBB Init = iota
	// InitAdaGrad uses the per-coordinate scaling 1/sqrt(adagradSum + sqrt(eps)).
	InitAdaGrad
	// InitRMS uses 1/sqrt(rmsSum + sqrt(eps)) with an exponential moving
	// average of the squared gradient.
	InitRMS
)

// String returns the lowercase name used in options and logs.
func (in Init) String() string {
	switch in {
	case InitAdaGrad:
		return "adagrad"
	case InitRMS:
		return "rms"
	default:
		return "bb"
	}
}

// Model is the curvature state consulted by the training loop for search
// directions. Both the pair window and the dense Hessian satisfy it.
type Model interface {
	// Direction writes the search direction H·g into dst.
	Direction(dst, g []float64)
	// Apply writes H·g into dst without advancing any internal gradient
	// accumulators. Used by Powell damping, which probes the current model.
	Apply(dst, g []float64)
	// Reset discards the curvature estimate.
	Reset()
}

// Window is a fixed-capacity FIFO of curvature pairs implementing the L-BFGS
// two-loop recursion. The backing arrays form a ring buffer indexed by a
// write cursor, so storing and evicting never reallocates.
type Window struct {
	dim      int
	capacity int
	init     Init

	s     [][]float64
	y     [][]float64
	head  int // next write slot
	count int

	adagradSum []float64
	rmsSum     []float64

	// two-loop scratch
	alpha []float64
	q     []float64
}

// NewWindow creates an empty pair window for dim-dimensional iterates holding
// at most capacity pairs. capacity must be at least 1.
func NewWindow(dim, capacity int, init Init) *Window {
	if capacity < 1 {
		capacity = 1
	}
	w := &Window{
		dim:        dim,
		capacity:   capacity,
		init:       init,
		s:          make([][]float64, capacity),
		y:          make([][]float64, capacity),
		adagradSum: make([]float64, dim),
		rmsSum:     make([]float64, dim),
		alpha:      make([]float64, capacity),
		q:          make([]float64, dim),
	}
	for i := 0; i < capacity; i++ {
		w.s[i] = make([]float64, dim)
		w.y[i] = make([]float64, dim)
	}
	return w
}

// Len reports the number of stored pairs.
func (w *Window) Len() int { return w.count }

// Cap reports the pair capacity.
func (w *Window) Cap() int { return w.capacity }

// Pair returns copies of the i-th stored pair, oldest first.
func (w *Window) Pair(i int) (s, y []float64) {
	slot := w.slot(i)
	s = append([]float64(nil), w.s[slot]...)
	y = append([]float64(nil), w.y[slot]...)
	return s, y
}

// slot maps oldest-first index i to a ring slot.
func (w *Window) slot(i int) int {
	return ((w.head-w.count+i)%w.capacity + w.capacity) % w.capacity
}

// Store appends a curvature pair, evicting the oldest pair when the window is
// full. Callers are expected to have run their acceptance test first; Store
// itself never rejects.
func (w *Window) Store(s, y []float64) {
	copy(w.s[w.head], s)
	copy(w.y[w.head], y)
	w.head = (w.head + 1) % w.capacity
	if w.count < w.capacity {
		w.count++
	}
}

// Reset empties the pair window. The AdaGrad and RMS accumulators survive a
// reset: they track the gradient stream, not the pair history.
func (w *Window) Reset() {
	w.head = 0
	w.count = 0
}

// Direction computes the search direction H·g for the next step. The squared
// gradient accumulators advance here, once per step.
//
// The accumulators advance only in BB and RMS modes; selecting AdaGrad
// freezes them at their current values. This asymmetry is deliberate and is
// kept as-is (see DESIGN.md, open questions).
func (w *Window) Direction(dst, g []float64) {
	if w.init == InitBB || w.init == InitRMS {
		for i, gi := range g {
			w.adagradSum[i] += gi * gi
			w.rmsSum[i] = 0.9*w.rmsSum[i] + 0.1*gi*gi
		}
	}
	w.Apply(dst, g)
}

// Apply runs the two-loop recursion, writing H·g into dst. It never touches
// the gradient accumulators, so damping probes leave the model unchanged.
func (w *Window) Apply(dst, g []float64) {
	if w.count == 0 && w.init == InitBB {
		copy(dst, g)
		return
	}

	q := w.q
	copy(q, g)

	// First loop, newest to oldest.
	for i := w.count - 1; i >= 0; i-- {
		slot := w.slot(i)
		sy := floats.Dot(w.s[slot], w.y[slot])
		if math.Abs(sy) < machEps {
			w.alpha[i] = 0
			continue
		}
		w.alpha[i] = floats.Dot(w.s[slot], q) / sy
		floats.AddScaled(q, -w.alpha[i], w.y[slot])
	}

	w.applyH0(q)

	// Second loop, oldest to newest.
	for i := 0; i < w.count; i++ {
		slot := w.slot(i)
		sy := floats.Dot(w.s[slot], w.y[slot])
		if math.Abs(sy) < machEps {
			continue
		}
		beta := floats.Dot(w.y[slot], q) / sy
		floats.AddScaled(q, w.alpha[i]-beta, w.s[slot])
	}
	copy(dst, q)
}

// applyH0 scales q in place by the initial inverse-Hessian estimate.
func (w *Window) applyH0(q []float64) {
	switch w.init {
	case InitAdaGrad:
		for i := range q {
			q[i] /= math.Sqrt(w.adagradSum[i] + SqrtEps)
		}
	case InitRMS:
		for i := range q {
			q[i] /= math.Sqrt(w.rmsSum[i] + SqrtEps)
		}
	default:
		slot := w.slot(w.count - 1)
		yy := floats.Dot(w.y[slot], w.y[slot])
		if yy < machEps {
			// Degenerate newest pair; fall back to the identity rather
			// than divide by a vanishing norm.
			return
		}
		gamma := floats.Dot(w.s[slot], w.y[slot]) / yy
		if !(gamma > 0) || math.IsInf(gamma, 0) {
			return
		}
		floats.Scale(gamma, q)
	}
}
