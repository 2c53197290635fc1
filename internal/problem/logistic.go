package problem

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Logistic is the binary logistic-regression objective over ±1 labels,
//
//	f(w) = (1/k) sum_i log(1 + exp(−y_i·x_iᵀ·w))
//
// averaged over the k selected rows.
type Logistic struct {
	x  *mat.Dense
	y  []float64
	w0 []float64
}

// NewLogistic builds a logistic-regression objective from an m×n design
// matrix and m labels in {−1, +1}.
func NewLogistic(x *mat.Dense, y []float64) (*Logistic, error) {
	m, n := x.Dims()
	if len(y) != m {
		return nil, errors.Errorf("logistic: %d labels for %d rows", len(y), m)
	}
	for i, yi := range y {
		if yi != 1 && yi != -1 {
			return nil, errors.Errorf("logistic: label %v at row %d, want ±1", yi, i)
		}
	}
	return &Logistic{x: x, y: y, w0: make([]float64, n)}, nil
}

// Dim returns the parameter count.
func (p *Logistic) Dim() int { _, n := p.x.Dims(); return n }

// NumSamples returns the number of rows.
func (p *Logistic) NumSamples() int { m, _ := p.x.Dims(); return m }

// Init returns a copy of the starting iterate.
func (p *Logistic) Init() []float64 { return append([]float64(nil), p.w0...) }

// SetInit overrides the starting iterate.
func (p *Logistic) SetInit(w0 []float64) { copy(p.w0, w0) }

// Func evaluates the averaged logistic loss over indices.
func (p *Logistic) Func(w []float64, indices []int) float64 {
	sum := 0.0
	k := 0
	p.each(indices, func(i int) {
		t := p.y[i] * floats.Dot(p.x.RawRowView(i), w)
		sum += logistic(t)
		k++
	})
	return sum / float64(k)
}

// Grad writes −(1/k) sum_i y_i·sigma(−y_i·x_iᵀ·w)·x_i into dst.
func (p *Logistic) Grad(dst, w []float64, indices []int) {
	zero(dst)
	k := 0
	p.each(indices, func(i int) {
		xi := p.x.RawRowView(i)
		t := p.y[i] * floats.Dot(xi, w)
		floats.AddScaled(dst, -p.y[i]*sigmoid(-t), xi)
		k++
	})
	floats.Scale(1/float64(k), dst)
}

// HessVec writes (1/k) sum_i sigma_i·(1−sigma_i)·(x_iᵀ·v)·x_i into dst,
// where sigma_i = sigma(x_iᵀ·w). The label drops out of the second
// derivative.
func (p *Logistic) HessVec(dst, w, v []float64, indices []int) {
	zero(dst)
	k := 0
	p.each(indices, func(i int) {
		xi := p.x.RawRowView(i)
		s := sigmoid(floats.Dot(xi, w))
		floats.AddScaled(dst, s*(1-s)*floats.Dot(xi, v), xi)
		k++
	})
	floats.Scale(1/float64(k), dst)
}

func (p *Logistic) each(indices []int, f func(i int)) {
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

// logistic computes log(1 + exp(−t)) without overflow for large |t|.
func logistic(t float64) float64 {
	if t > 0 {
		return math.Log1p(math.Exp(-t))
	}
	return -t + math.Log1p(math.Exp(t))
}

func sigmoid(t float64) float64 {
	if t >= 0 {
		return 1 / (1 + math.Exp(-t))
	}
	e := math.Exp(t)
	return e / (1 + e)
}
