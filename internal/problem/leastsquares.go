package problem

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LeastSquares is the linear least-squares objective
//
//	f(w) = (1/(2k)) sum_i (x_iᵀ·w − y_i)²
//
// averaged over the k selected rows of the design matrix.
type LeastSquares struct {
	x  *mat.Dense
	y  []float64
	w0 []float64
}

// NewLeastSquares builds a least-squares objective from an m×n design matrix
// and m targets. The starting iterate is the origin.
func NewLeastSquares(x *mat.Dense, y []float64) (*LeastSquares, error) {
	m, n := x.Dims()
	if len(y) != m {
		return nil, errors.Errorf("least squares: %d targets for %d rows", len(y), m)
	}
	return &LeastSquares{x: x, y: y, w0: make([]float64, n)}, nil
}

// Dim returns the parameter count.
func (p *LeastSquares) Dim() int { _, n := p.x.Dims(); return n }

// NumSamples returns the number of rows.
func (p *LeastSquares) NumSamples() int { m, _ := p.x.Dims(); return m }

// Init returns a copy of the starting iterate.
func (p *LeastSquares) Init() []float64 { return append([]float64(nil), p.w0...) }

// SetInit overrides the starting iterate.
func (p *LeastSquares) SetInit(w0 []float64) { copy(p.w0, w0) }

// Func evaluates the averaged half squared residual over indices.
func (p *LeastSquares) Func(w []float64, indices []int) float64 {
	sum := 0.0
	k := 0
	p.each(indices, func(i int) {
		r := floats.Dot(p.x.RawRowView(i), w) - p.y[i]
		sum += r * r
		k++
	})
	return sum / (2 * float64(k))
}

// Grad writes (1/k) sum_i r_i·x_i into dst.
func (p *LeastSquares) Grad(dst, w []float64, indices []int) {
	zero(dst)
	k := 0
	p.each(indices, func(i int) {
		xi := p.x.RawRowView(i)
		r := floats.Dot(xi, w) - p.y[i]
		floats.AddScaled(dst, r, xi)
		k++
	})
	floats.Scale(1/float64(k), dst)
}

// HessVec writes (1/k) sum_i (x_iᵀ·v)·x_i into dst. The least-squares
// Hessian does not depend on w.
func (p *LeastSquares) HessVec(dst, w, v []float64, indices []int) {
	zero(dst)
	k := 0
	p.each(indices, func(i int) {
		xi := p.x.RawRowView(i)
		floats.AddScaled(dst, floats.Dot(xi, v), xi)
		k++
	})
	floats.Scale(1/float64(k), dst)
}

// Optimum returns the closed-form minimizer solving the normal equations,
// useful as a convergence reference.
func (p *LeastSquares) Optimum() ([]float64, error) {
	_, n := p.x.Dims()
	w := mat.NewVecDense(n, nil)
	yv := mat.NewVecDense(len(p.y), append([]float64(nil), p.y...))
	if err := w.SolveVec(p.x, yv); err != nil {
		return nil, errors.Wrap(err, "least squares: normal equations")
	}
	out := make([]float64, n)
	copy(out, w.RawVector().Data)
	return out, nil
}

func (p *LeastSquares) each(indices []int, f func(i int)) {
	if indices == nil {
		m, _ := p.x.Dims()
		for i := 0; i < m; i++ {
			f(i)
		}
		return
	}
	for _, i := range indices {
		f(i)
	}
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}
