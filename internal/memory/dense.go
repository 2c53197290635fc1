package memory

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dense is the explicit direct-Hessian approximation B used by the
// full-memory BFGS family (oBFGS, D-oBFGS, RES, SDBFGS). It starts at the
// identity and absorbs curvature pairs through the standard rank-2 BFGS
// update plus an optional delta·I regularizer. Search directions solve
// B·d = g through a cached Cholesky factorization.
type Dense struct {
	dim  int
	b    *mat.SymDense
	chol mat.Cholesky
	ok   bool // factorization valid for the current b

	bs       *mat.VecDense // scratch: B·s
	jittered *mat.SymDense
}

// NewDense creates a dim-dimensional approximation initialized to the
// identity matrix.
func NewDense(dim int) *Dense {
	d := &Dense{
		dim: dim,
		b:   mat.NewSymDense(dim, nil),
		bs:  mat.NewVecDense(dim, nil),
	}
	d.Reset()
	return d
}

// Reset restores B to the identity and invalidates the factorization.
func (d *Dense) Reset() {
	for i := 0; i < d.dim; i++ {
		for j := i; j < d.dim; j++ {
			if i == j {
				d.b.SetSym(i, j, 1)
			} else {
				d.b.SetSym(i, j, 0)
			}
		}
	}
	d.ok = false
}

// Matrix returns a read-only view of the current approximation.
func (d *Dense) Matrix() mat.Symmetric { return d.b }

// Update absorbs the pair (s, y) into B:
//
//	B ← B + y·yᵀ/(yᵀs) − (B·s)(B·s)ᵀ/(sᵀ·B·s) + delta·I
//
// Rank-one terms with a vanishing denominator are skipped so a degenerate
// pair cannot inject NaN or Inf into the matrix.
func (d *Dense) Update(s, y []float64, delta float64) {
	sv := mat.NewVecDense(d.dim, s)
	yv := mat.NewVecDense(d.dim, y)

	// Both rank-one terms read the pre-update matrix, so B·s is formed first.
	d.bs.MulVec(d.b, sv)
	sbs := mat.Dot(sv, d.bs)

	ys := floats.Dot(y, s)
	if math.Abs(ys) > machEps {
		d.b.SymRankOne(d.b, 1/ys, yv)
	}
	if math.Abs(sbs) > machEps {
		d.b.SymRankOne(d.b, -1/sbs, d.bs)
	}

	if delta != 0 {
		for i := 0; i < d.dim; i++ {
			d.b.SetSym(i, i, d.b.At(i, i)+delta)
		}
	}
	d.ok = false
}

// Direction solves B·dst = g. Dense mode has no gradient accumulators, so
// Direction and Apply coincide.
func (d *Dense) Direction(dst, g []float64) { d.Apply(dst, g) }

// Apply solves B·dst = g via Cholesky. When B has drifted away from positive
// definiteness the solve retries with an escalating diagonal jitter, and as a
// last resort falls back to the gradient direction itself.
func (d *Dense) Apply(dst, g []float64) {
	if !d.ok {
		d.ok = d.chol.Factorize(d.b)
	}
	gv := mat.NewVecDense(d.dim, g)
	dv := mat.NewVecDense(d.dim, dst)
	if d.ok {
		if err := d.chol.SolveVecTo(dv, gv); err == nil {
			return
		}
	}

	// Jittered retry: B + jitter·I, jitter escalating by decades.
	if d.jittered == nil {
		d.jittered = mat.NewSymDense(d.dim, nil)
	}
	for jitter := 1e-8; jitter <= 1e-2; jitter *= 10 {
		d.jittered.CopySym(d.b)
		for i := 0; i < d.dim; i++ {
			d.jittered.SetSym(i, i, d.jittered.At(i, i)+jitter)
		}
		var chol mat.Cholesky
		if chol.Factorize(d.jittered) {
			if err := chol.SolveVecTo(dv, gv); err == nil {
				return
			}
		}
	}
	copy(dst, g)
}
