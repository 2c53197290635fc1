// Package problem defines the finite-sum objective interface consumed by the
// optimizers, along with two concrete objectives: binary logistic regression
// and linear least squares. Objectives evaluate over an index subset of the
// dataset so the optimizers can work with stochastic mini-batches.
package problem

// Problem is a finite-sum objective f(w) = (1/n) sum_i f_i(w).
//
// Every evaluation method takes the index subset to average over; a nil
// subset means the full dataset. Grad and HessVec write into dst so callers
// can reuse buffers across batches.
type Problem interface {
	// Func evaluates the averaged objective at w over indices.
	Func(w []float64, indices []int) float64
	// Grad writes the averaged gradient at w over indices into dst.
	Grad(dst, w []float64, indices []int)
	// HessVec writes the averaged Hessian-vector product H(w)·v over
	// indices into dst.
	HessVec(dst, w, v []float64, indices []int)
	// Dim is the number of parameters.
	Dim() int
	// NumSamples is the number of terms n in the finite sum.
	NumSamples() int
	// Init returns a fresh copy of the starting iterate w0.
	Init() []float64
}
