package curvature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sqn-ml/sqn/internal/memory"
)

// quad is a stub objective with constant Hessian curv·I, used to give the
// strategies fully predictable pairs.
type quad struct {
	dim  int
	m    int
	curv float64
}

func (q *quad) Func(w []float64, _ []int) float64 {
	return 0.5 * q.curv * floats.Dot(w, w)
}

func (q *quad) Grad(dst, w []float64, _ []int) {
	for i := range dst {
		dst[i] = q.curv * w[i]
	}
}

func (q *quad) HessVec(dst, _, v []float64, _ []int) {
	for i := range dst {
		dst[i] = q.curv * v[i]
	}
}

func (q *quad) Dim() int        { return q.dim }
func (q *quad) NumSamples() int { return q.m }
func (q *quad) Init() []float64 { return make([]float64, q.dim) }

func TestPowellDamp_ThetaOne(t *testing.T) {
	s := []float64{1, 0}
	y := []float64{1, 0}
	hy := []float64{1, 0} // identity model
	r := make([]float64, 2)

	theta := PowellDamp(r, s, y, hy)
	assert.Equal(t, 1.0, theta)
	assert.Equal(t, s, r)
}

func TestPowellDamp_ThetaBounds(t *testing.T) {
	// Negative curvature pair: lhs = −1, rhs = 0.2, theta = 0.8/2 = 0.4.
	s := []float64{-1, 0}
	y := []float64{1, 0}
	hy := []float64{1, 0}
	r := make([]float64, 2)

	theta := PowellDamp(r, s, y, hy)
	assert.InDelta(t, 0.4, theta, 1e-12)
	assert.Greater(t, theta, 0.0)
	assert.Less(t, theta, 1.0)
	assert.InDelta(t, 0.4*s[0]+0.6*hy[0], r[0], 1e-12)

	// Damped pair satisfies the curvature condition r·y > 0.
	assert.Greater(t, floats.Dot(r, y), 0.0)
}

func TestFisher_FIFO(t *testing.T) {
	f := NewFisher(2, 3)
	for k := 1; k <= 4; k++ {
		f.Push([]float64{float64(k), 0})
	}
	require.Equal(t, 3, f.Len())

	// Survivors are k = 2, 3, 4: Gram(e1) = sum k² = 29 on the first axis.
	dst := make([]float64, 2)
	f.Gram(dst, []float64{1, 0})
	assert.InDelta(t, 29.0, dst[0], 1e-12)
	assert.InDelta(t, 0.0, dst[1], 1e-12)
}

func TestGradientDiff_PairValues(t *testing.T) {
	q := &quad{dim: 2, m: 10, curv: 2}
	win := memory.NewWindow(2, 5, memory.InitBB)
	st := NewGradientDiff(win, q, GradientDiffConfig{Delta: 0.5})

	wPrev := []float64{1, 1}
	w := []float64{0.8, 0.9}
	grad := make([]float64, 2)
	q.Grad(grad, wPrev, nil)

	st.AfterStep(StepInfo{WPrev: wPrev, W: w, Grad: grad})

	require.Equal(t, 1, win.Len())
	s, y := win.Pair(0)
	// s = w − wPrev, y = g(w) − g(wPrev) − delta·s = (curv − delta)·s.
	for i := range s {
		assert.InDelta(t, w[i]-wPrev[i], s[i], 1e-12)
		assert.InDelta(t, 1.5*s[i], y[i], 1e-12)
	}
}

func TestGradientDiff_DenseSecant(t *testing.T) {
	q := &quad{dim: 2, m: 10, curv: 2}
	dense := memory.NewDense(2)
	st := NewGradientDiffDense(dense, q, GradientDiffConfig{})

	wPrev := []float64{1, 0}
	w := []float64{0.5, 0.25}
	grad := make([]float64, 2)
	q.Grad(grad, wPrev, nil)

	st.AfterStep(StepInfo{WPrev: wPrev, W: w, Grad: grad})

	s := []float64{w[0] - wPrev[0], w[1] - wPrev[1]}
	var bs mat.VecDense
	bs.MulVec(dense.Matrix(), mat.NewVecDense(2, s))
	for i := range s {
		assert.InDelta(t, 2*s[i], bs.AtVec(i), 1e-10)
	}
}

func TestHessianVector_RhoSkip(t *testing.T) {
	// Negative curvature makes y = −s, so rho < 0 and the pair is rejected.
	q := &quad{dim: 2, m: 10, curv: -1}
	win := memory.NewWindow(2, 5, memory.InitBB)
	rng := rand.New(rand.NewSource(1))
	st := NewHessianVector(win, q, rng, HessianVectorConfig{Every: 1, BatchHess: 2})

	st.AfterStep(StepInfo{W: []float64{1, 0}}) // seeds w_o
	st.AfterStep(StepInfo{W: []float64{0.5, 0.5}})

	assert.Equal(t, 0, win.Len(), "pair failing the rho test must not be stored")
}

func TestHessianVector_StoresAveragedPair(t *testing.T) {
	q := &quad{dim: 2, m: 10, curv: 1}
	win := memory.NewWindow(2, 5, memory.InitBB)
	rng := rand.New(rand.NewSource(1))
	st := NewHessianVector(win, q, rng, HessianVectorConfig{Every: 2, BatchHess: 2})

	st.AfterStep(StepInfo{W: []float64{2, 0}})
	st.AfterStep(StepInfo{W: []float64{0, 2}}) // first average (1,1) seeds w_o
	st.AfterStep(StepInfo{W: []float64{0.4, 0}})
	st.AfterStep(StepInfo{W: []float64{0, 0.4}}) // second average (0.2,0.2)

	require.Equal(t, 1, win.Len())
	s, y := win.Pair(0)
	for i := range s {
		assert.InDelta(t, -0.8, s[i], 1e-12)
		assert.InDelta(t, s[i], y[i], 1e-12) // unit curvature: y = s
	}
}

func TestAdaQN_RollbackOnMonitoringIncrease(t *testing.T) {
	q := &quad{dim: 2, m: 10, curv: 1}
	win := memory.NewWindow(2, 5, memory.InitRMS)
	fisher := NewFisher(2, 4)
	st := NewAdaQN(win, fisher, q, AdaQNConfig{Every: 1, MonIdx: []int{0, 1}})

	g := []float64{1, 0}
	st.AfterStep(StepInfo{W: []float64{0.1, 0}, Grad: g}) // seeds w_o

	win.Store([]float64{1, 0}, []float64{1, 0})
	require.Equal(t, 1, win.Len())

	w := []float64{10, 0} // monitoring loss explodes
	st.AfterStep(StepInfo{W: w, Grad: g})

	assert.Equal(t, 0, win.Len(), "rollback must clear the pair window")
	assert.Equal(t, []float64{0.1, 0}, w, "iterate must be rolled back to the last accepted average")
}

func TestAdaQN_AcceptsFisherPair(t *testing.T) {
	q := &quad{dim: 2, m: 10, curv: 1}
	win := memory.NewWindow(2, 5, memory.InitRMS)
	fisher := NewFisher(2, 4)
	st := NewAdaQN(win, fisher, q, AdaQNConfig{Every: 1, MonIdx: []int{0}})

	st.AfterStep(StepInfo{W: []float64{1, 0}, Grad: []float64{1, 0}})
	st.AfterStep(StepInfo{W: []float64{0.5, 0}, Grad: []float64{0.5, 0}})

	require.Equal(t, 1, win.Len())
	s, y := win.Pair(0)
	assert.InDelta(t, -0.5, s[0], 1e-12)
	// y = g1·(g1·s) + g2·(g2·s) with g1 = (1,0), g2 = (0.5,0).
	assert.InDelta(t, -0.625, y[0], 1e-12)
}
