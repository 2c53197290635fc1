// Copyright 2025 SQN Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/sqn-ml/sqn/internal/memory"
	"github.com/sqn-ml/sqn/internal/optim"
	"github.com/sqn-ml/sqn/internal/problem"
)

// Method names a stochastic quasi-Newton variant.
type Method = optim.Method

// The supported methods.
const (
	SQN     = optim.SQN
	DSQN    = optim.DSQN
	OBFGS   = optim.OBFGS
	OLBFGS  = optim.OLBFGS
	DOBFGS  = optim.DOBFGS
	DOLBFGS = optim.DOLBFGS
	RES     = optim.RES
	LRES    = optim.LRES
	SDBFGS  = optim.SDBFGS
	LSDBFGS = optim.LSDBFGS
	AdaQN   = optim.AdaQN
)

// Options configures a training run.
type Options = optim.Options

// Hyperparams records the hyperparameter set a trial ran with.
type Hyperparams = optim.Hyperparams

// Result is the outcome of a run.
type Result = optim.Result

// Init selects the two-loop inverse-Hessian initializer.
type Init = memory.Init

// The available initializers.
const (
	InitBB      = memory.InitBB
	InitAdaGrad = memory.InitAdaGrad
	InitRMS     = memory.InitRMS
)

// Error values surfaced by Run.
var (
	ErrUnknownMethod     = optim.ErrUnknownMethod
	ErrDivergedLoss      = optim.ErrDivergedLoss
	ErrAllTrialsDiverged = optim.ErrAllTrialsDiverged
)

// Methods lists every supported method name.
func Methods() []Method {
	return optim.Methods()
}

// Run trains prob with the configured method, tuning any hyperparameters
// left unset.
//
// Example:
//
//	result, err := optim.Run(prob, optim.Options{
//	    Method: optim.SQN,
//	    Epochs: 20,
//	    Alpha:  0.05,
//	    L:      5,
//	})
func Run(prob problem.Problem, opts Options) (*Result, error) {
	return optim.Run(prob, opts)
}
