package problem

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SyntheticLeastSquares builds an m×n least-squares instance with a Gaussian
// design matrix, a planted parameter vector, and Gaussian target noise of the
// given standard deviation. It returns the instance and the planted vector.
func SyntheticLeastSquares(m, n int, noise float64, rng *rand.Rand) (*LeastSquares, []float64) {
	x, wStar := gaussianDesign(m, n, rng)
	y := make([]float64, m)
	for i := 0; i < m; i++ {
		y[i] = floats.Dot(x.RawRowView(i), wStar) + noise*rng.NormFloat64()
	}
	p, _ := NewLeastSquares(x, y)
	return p, wStar
}

// SyntheticLogistic builds an m×n logistic-regression instance. Labels are
// drawn from the planted model's class probabilities, so the instance is not
// perfectly separable and the optimum stays finite.
func SyntheticLogistic(m, n int, rng *rand.Rand) (*Logistic, []float64) {
	x, wStar := gaussianDesign(m, n, rng)
	y := make([]float64, m)
	for i := 0; i < m; i++ {
		pPos := 1 / (1 + math.Exp(-floats.Dot(x.RawRowView(i), wStar)))
		if rng.Float64() < pPos {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	p, _ := NewLogistic(x, y)
	return p, wStar
}

func gaussianDesign(m, n int, rng *rand.Rand) (*mat.Dense, []float64) {
	x := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}
	wStar := make([]float64, n)
	for j := range wStar {
		wStar[j] = rng.NormFloat64()
	}
	return x, wStar
}
