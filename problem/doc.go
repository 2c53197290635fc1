// Copyright 2025 SQN Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package problem defines the objective interface the optimizers consume and
// two reference objectives: binary logistic regression and linear least
// squares.
//
// # The Interface
//
// A Problem is a finite-sum objective f(w) = (1/n) sum_i f_i(w) that can
// evaluate its value, gradient, and Hessian-vector product over any index
// subset of the dataset:
//
//	type Problem interface {
//	    Func(w []float64, indices []int) float64
//	    Grad(dst, w []float64, indices []int)
//	    HessVec(dst, w, v []float64, indices []int)
//	    Dim() int
//	    NumSamples() int
//	    Init() []float64
//	}
//
// A nil index subset means the full dataset. Implementations supply exact
// derivatives; the optimizers never differentiate numerically.
//
// # Reference Objectives
//
//	x := mat.NewDense(m, n, data)
//	prob, err := problem.NewLogistic(x, labels)
//
// Synthetic generators build random instances with a planted parameter
// vector for experiments and tests.
package problem
