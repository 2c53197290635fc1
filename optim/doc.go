// Copyright 2025 SQN Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides stochastic quasi-Newton optimizers for unconstrained
// finite-sum minimization.
//
// # Overview
//
// Eleven method variants share one engine: a curvature-pair store with the
// L-BFGS two-loop recursion (or an explicit BFGS matrix for the full-memory
// methods), two pair-update disciplines (Hessian-vector products over
// averaged iterates, and per-step gradient differencing), optional Powell
// damping and Hessian regularization, and a randomized hyperparameter tuner
// that makes every method parameter-free.
//
//   - SQN, DSQN: periodic Hessian-vector curvature updates
//   - oBFGS, oLBFGS, D-oBFGS, D-oLBFGS: online gradient differencing
//   - RES, L-RES: regularized stochastic BFGS
//   - SDBFGS, L-SDBFGS: damped and regularized
//   - adaQN: Fisher-weighted pairs with monitored rollback
//
// # Basic Usage
//
//	import (
//	    "github.com/sqn-ml/sqn/optim"
//	    "github.com/sqn-ml/sqn/problem"
//	)
//
//	func main() {
//	    prob, _ := problem.NewLogistic(x, y)
//
//	    result, err := optim.Run(prob, optim.Options{
//	        Method: optim.SQN,
//	        Epochs: 20,
//	        Alpha:  0.05,
//	        L:      5,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.LossHistory)
//	}
//
// # Automatic Tuning
//
// Leaving Alpha (and, where consumed, L and Delta) at zero runs TuningSteps
// randomized trials with hyperparameters drawn log-uniformly from fixed
// ranges. Diverged trials are discarded; the trial with the lowest
// final-epoch loss wins. If every trial diverges, Run returns
// ErrAllTrialsDiverged.
//
//	result, err := optim.Run(prob, optim.Options{
//	    Method:      optim.AdaQN,
//	    Epochs:      20,
//	    TuningSteps: 25,
//	    Workers:     8, // run trials concurrently; selection stays deterministic
//	})
//
// # Custom Objectives
//
// Any type implementing problem.Problem — function value, gradient, and
// Hessian-vector product over an index subset — can be trained. See the
// problem package for the interface and two reference objectives.
package optim
