// Copyright 2025 SQN Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package problem

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/sqn-ml/sqn/internal/problem"
)

// Problem is a finite-sum objective exposing function, gradient, and
// Hessian-vector evaluation over an index subset. A nil subset means the
// full dataset.
type Problem = problem.Problem

// LeastSquares is the linear least-squares objective.
type LeastSquares = problem.LeastSquares

// Logistic is the binary logistic-regression objective over ±1 labels.
type Logistic = problem.Logistic

// NewLeastSquares builds a least-squares objective from an m×n design matrix
// and m targets.
func NewLeastSquares(x *mat.Dense, y []float64) (*LeastSquares, error) {
	return problem.NewLeastSquares(x, y)
}

// NewLogistic builds a logistic-regression objective from an m×n design
// matrix and m labels in {−1, +1}.
func NewLogistic(x *mat.Dense, y []float64) (*Logistic, error) {
	return problem.NewLogistic(x, y)
}

// SyntheticLeastSquares builds a random least-squares instance with a
// planted parameter vector, returned alongside the instance.
func SyntheticLeastSquares(m, n int, noise float64, rng *rand.Rand) (*LeastSquares, []float64) {
	return problem.SyntheticLeastSquares(m, n, noise, rng)
}

// SyntheticLogistic builds a random logistic-regression instance with a
// planted parameter vector, returned alongside the instance.
func SyntheticLogistic(m, n int, rng *rand.Rand) (*Logistic, []float64) {
	return problem.SyntheticLogistic(m, n, rng)
}
