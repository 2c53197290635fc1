package curvature

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/sqn-ml/sqn/internal/memory"
	"github.com/sqn-ml/sqn/internal/problem"
)

// HessianVector is the SQN/DSQN pair discipline. Every L steps it averages
// the trailing L iterates, differences the average against the previous one,
// and completes the pair with a Hessian-vector product on a fresh batch.
// Without damping a pair is accepted only when its curvature ratio
// (s·y)/(y·y) clears sqrt(machine epsilon); with damping every pair is
// stored after Powell correction.
type HessianVector struct {
	mem       *memory.Window
	prob      problem.Problem
	rng       *rand.Rand
	every     int
	damping   bool
	batchHess int

	sum     []float64 // running iterate sum of the current period
	n       int
	avg     []float64 // w_n
	prev    []float64 // w_o
	hasPrev bool

	s, y, hy, r []float64
}

// HessianVectorConfig configures the SQN pair discipline.
type HessianVectorConfig struct {
	Every     int  // update period L
	Damping   bool // Powell-damp each pair before storing
	BatchHess int  // batch size for the Hessian-vector product
}

// NewHessianVector creates the strategy. The rng draws the fresh
// Hessian batch each period.
func NewHessianVector(mem *memory.Window, prob problem.Problem, rng *rand.Rand, cfg HessianVectorConfig) *HessianVector {
	dim := prob.Dim()
	return &HessianVector{
		mem:       mem,
		prob:      prob,
		rng:       rng,
		every:     cfg.Every,
		damping:   cfg.Damping,
		batchHess: cfg.BatchHess,
		sum:       make([]float64, dim),
		avg:       make([]float64, dim),
		prev:      make([]float64, dim),
		s:         make([]float64, dim),
		y:         make([]float64, dim),
		hy:        make([]float64, dim),
		r:         make([]float64, dim),
	}
}

// AfterStep accumulates the new iterate and, at the end of each period,
// attempts a curvature update.
func (st *HessianVector) AfterStep(info StepInfo) {
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
		// First period only seeds w_o.
		copy(st.prev, st.avg)
		st.hasPrev = true
		return
	}

	floats.SubTo(st.s, st.avg, st.prev)
	idx := SampleWithReplacement(st.rng, st.prob.NumSamples(), st.batchHess)
	st.prob.HessVec(st.y, st.avg, st.s, idx)

	if st.damping {
		st.mem.Apply(st.hy, st.y)
		PowellDamp(st.r, st.s, st.y, st.hy)
		st.mem.Store(st.r, st.y)
	} else {
		yy := floats.Dot(st.y, st.y)
		if yy > 0 && floats.Dot(st.s, st.y)/yy > memory.SqrtEps {
			st.mem.Store(st.s, st.y)
		}
	}
	copy(st.prev, st.avg)
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}
