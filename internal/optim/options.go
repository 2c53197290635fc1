// Package optim implements the stochastic quasi-Newton training engine: the
// method dispatcher, the epoch/batch training loop, and the randomized
// hyperparameter tuner that wraps any method into a parameter-free one.
//
// A run is driven by a single Options value:
//
//	result, err := optim.Run(prob, optim.Options{
//	    Method: optim.SQN,
//	    Epochs: 20,
//	    Alpha:  0.05,
//	    L:      5,
//	})
//
// Leaving Alpha (and, where the method uses them, L and Delta) at zero turns
// on tuning: the engine samples them log-uniformly for TuningSteps trials and
// keeps the trial with the lowest final-epoch loss.
package optim

import (
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/sqn-ml/sqn/internal/memory"
)

var (
	// ErrUnknownMethod reports a method name with no declared
	// curvature-pair strategy.
	ErrUnknownMethod = errors.New("optim: no curvature-pair strategy for method")

	// ErrDivergedLoss reports a non-finite loss inside a single trial. The
	// tuner recovers from it by discarding the trial.
	ErrDivergedLoss = errors.New("optim: loss diverged")

	// ErrAllTrialsDiverged reports that every tuning trial produced a
	// non-finite loss. Increase TuningSteps, change the Seed, or supply
	// hyperparameters manually.
	ErrAllTrialsDiverged = errors.New("optim: all tuning trials diverged")
)

// Options configures a training run. The zero value of every field selects a
// documented default, so callers set only what they care about.
type Options struct {
	// Method names the quasi-Newton variant to run. Required.
	Method Method

	Epochs    int // number of passes over the dataset (default: 10)
	BatchSize int // gradient batch size, sampled with replacement (default: 64)

	// BatchSizeHess sizes the fresh batch used for Hessian-vector products
	// in the SQN family (default: BatchSize).
	BatchSizeHess int
	// BatchSizeFun sizes adaQN's fixed monitoring set (default: 256).
	BatchSizeFun int

	// Memory is the curvature-pair window size for limited-memory methods.
	// Negative requests an unbounded window, which limited-memory methods
	// correct to the default (default: 20). Full-memory methods ignore it.
	Memory int
	// FisherMemory caps adaQN's gradient FIFO (default: 100).
	FisherMemory int

	// Init selects the two-loop H0 initializer. adaQN overrides it to RMS
	// unless AdaGrad was chosen explicitly.
	Init memory.Init

	// Hyperparameters. A zero value means "tune this one".
	Alpha float64 // step size, tuned log-uniformly on [1e-6, 1e2]
	L     int     // curvature update period, tuned on {2,…,64}
	Delta float64 // Hessian regularization, tuned on [1e-5, 1e-1]

	// TuningSteps is the number of random-search trials when any
	// hyperparameter is left to tune (default: 10).
	TuningSteps int
	// Workers bounds how many tuning trials run concurrently. At most 1
	// means sequential. Selection is deterministic either way.
	Workers int

	Seed    uint64 // RNG seed for sampling and tuning draws (default: 1)
	Verbose bool   // log per-epoch losses

	// LogOutput receives warnings and verbose progress (default: os.Stdout).
	LogOutput io.Writer
}

// Hyperparams records the hyperparameter set a trial ran with.
type Hyperparams struct {
	Alpha float64
	L     int
	Delta float64
}

// Result is the outcome of a run: the per-epoch average losses, the
// hyperparameters of the winning trial, and its final iterate.
type Result struct {
	LossHistory []float64
	Hyperparams Hyperparams
	Iterate     []float64
}

// FinalLoss returns the last epoch's average loss.
func (r *Result) FinalLoss() float64 {
	return r.LossHistory[len(r.LossHistory)-1]
}

// config is a resolved, validated Options.
type config struct {
	Options
	spec   methodSpec
	logger *log.Logger
}

// resolve fills defaults and applies the dispatcher's structural
// corrections, warning about each one. Unknown methods fail here.
func resolve(opts Options) (*config, error) {
	spec, ok := methods[opts.Method]
	if !ok {
		return nil, errors.WithMessagef(ErrUnknownMethod, "%q", opts.Method)
	}

	if opts.Epochs <= 0 {
		opts.Epochs = 10
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	if opts.BatchSizeHess <= 0 {
		opts.BatchSizeHess = opts.BatchSize
	}
	if opts.BatchSizeFun <= 0 {
		opts.BatchSizeFun = 256
	}
	if opts.FisherMemory <= 0 {
		opts.FisherMemory = 100
	}
	if opts.TuningSteps <= 0 {
		opts.TuningSteps = 10
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	// Negative hyperparameters are never meaningful; treat them as unset.
	if opts.Alpha < 0 {
		opts.Alpha = 0
	}
	if opts.L < 0 {
		opts.L = 0
	}
	if opts.Delta < 0 {
		opts.Delta = 0
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stdout
	}

	cfg := &config{Options: opts, spec: spec, logger: log.New(opts.LogOutput, "", 0)}

	if spec.fullMemory {
		if cfg.Memory > 0 {
			cfg.logger.Printf("warning: %s maintains a full Hessian approximation; Memory=%d ignored", cfg.Method, cfg.Memory)
		}
		cfg.Memory = 0
	} else {
		if cfg.Memory < 0 {
			cfg.logger.Printf("warning: %s is a limited-memory method; unbounded Memory corrected to %d", cfg.Method, defaultMemory)
			cfg.Memory = defaultMemory
		}
		if cfg.Memory == 0 {
			cfg.Memory = defaultMemory
		}
	}

	// adaQN needs a per-coordinate H0 before any pair exists; only an
	// explicit AdaGrad choice overrides the RMS default.
	if spec.family == famFisher && cfg.Init != memory.InitAdaGrad {
		cfg.Init = memory.InitRMS
	}

	if !spec.regularized && cfg.Delta != 0 {
		cfg.logger.Printf("warning: %s has no Hessian regularization; Delta=%g forced to 0", cfg.Method, cfg.Delta)
		cfg.Delta = 0
	}

	return cfg, nil
}

// defaultMemory is the pair-window size limited-memory methods fall back to.
const defaultMemory = 20
