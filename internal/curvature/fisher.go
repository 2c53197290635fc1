package curvature

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sqn-ml/sqn/internal/memory"
	"github.com/sqn-ml/sqn/internal/problem"
)

// adaQN accepts a pair only when (s·y)/(y·y) clears this threshold.
const adaQNRhoTol = 1e-4

// Monitoring-loss growth beyond this factor triggers a rollback.
const adaQNGrowthTol = 1.01

// Fisher is a bounded FIFO of recent stochastic gradients. Applied as
// F·(Fᵀ·s) it serves adaQN as a low-rank Gauss-Newton proxy for the Hessian.
type Fisher struct {
	capacity int
	g        [][]float64
	head     int
	count    int
}

// NewFisher creates an accumulator holding at most capacity gradients of the
// given dimension.
func NewFisher(dim, capacity int) *Fisher {
	if capacity < 1 {
		capacity = 1
	}
	f := &Fisher{capacity: capacity, g: make([][]float64, capacity)}
	for i := range f.g {
		f.g[i] = make([]float64, dim)
	}
	return f
}

// Len reports the number of stored gradients.
func (f *Fisher) Len() int { return f.count }

// Push appends a gradient, evicting the oldest when full.
func (f *Fisher) Push(g []float64) {
	copy(f.g[f.head], g)
	f.head = (f.head + 1) % f.capacity
	if f.count < f.capacity {
		f.count++
	}
}

// Gram writes F·(Fᵀ·s) = sum_j g_j·(g_j·s) into dst.
func (f *Fisher) Gram(dst, s []float64) {
	zero(dst)
	for i := 0; i < f.count; i++ {
		slot := ((f.head-f.count+i)%f.capacity + f.capacity) % f.capacity
		floats.AddScaled(dst, floats.Dot(f.g[slot], s), f.g[slot])
	}
}

// AdaQN is the adaQN pair discipline: every gradient feeds the Fisher
// window, and every L steps the trailing iterate average is checked against
// a fixed monitoring set before a Fisher-weighted pair is formed. A
// monitoring loss that grows past 1.01× the previous average's signals a
// drifting curvature estimate — the pair window is cleared and the iterate
// rolled back to the last accepted average.
type AdaQN struct {
	mem    *memory.Window
	fisher *Fisher
	prob   problem.Problem
	monIdx []int
	every  int

	sum     []float64
	n       int
	avg     []float64
	prev    []float64
	hasPrev bool

	s, y []float64
}

// AdaQNConfig configures the adaQN discipline.
type AdaQNConfig struct {
	Every  int   // update period L
	MonIdx []int // monitoring set, sampled once per trial
}

// NewAdaQN creates the strategy.
func NewAdaQN(mem *memory.Window, fisher *Fisher, prob problem.Problem, cfg AdaQNConfig) *AdaQN {
	dim := prob.Dim()
	return &AdaQN{
		mem:    mem,
		fisher: fisher,
		prob:   prob,
		monIdx: cfg.MonIdx,
		every:  cfg.Every,
		sum:    make([]float64, dim),
		avg:    make([]float64, dim),
		prev:   make([]float64, dim),
		s:      make([]float64, dim),
		y:      make([]float64, dim),
	}
}

// AfterStep feeds the Fisher window and runs the periodic averaged update.
func (st *AdaQN) AfterStep(info StepInfo) {
	st.fisher.Push(info.Grad)

	floats.Add(st.sum, info.W)
	st.n++
	if st.n < st.every {
		return
	}

	copy(st.avg, st.sum)
	floats.Scale(1/float64(st.n), st.avg)
	st.n = 0
	zero(st.sum)

	if !st.hasPrev {
		copy(st.prev, st.avg)
		st.hasPrev = true
		return
	}

	fNew := st.prob.Func(st.avg, st.monIdx)
	fOld := st.prob.Func(st.prev, st.monIdx)
	if math.IsNaN(fNew) || math.IsInf(fNew, 0) || fNew > adaQNGrowthTol*fOld {
		// Curvature estimate has gone bad: drop it, restart from the last
		// accepted average, skip the update this period.
		st.mem.Reset()
		copy(info.W, st.prev)
		return
	}

	floats.SubTo(st.s, st.avg, st.prev)
	st.fisher.Gram(st.y, st.s)

	yy := floats.Dot(st.y, st.y)
	if yy > 0 && floats.Dot(st.s, st.y)/yy > adaQNRhoTol {
		st.mem.Store(st.s, st.y)
	}
	copy(st.prev, st.avg)
}
