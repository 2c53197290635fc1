// Package main provides the sqn command, a small driver that trains a
// synthetic objective with any of the stochastic quasi-Newton methods and
// prints the per-epoch loss trace.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/rand"

	"github.com/sqn-ml/sqn/optim"
	"github.com/sqn-ml/sqn/problem"
)

func main() {
	var (
		method   = flag.String("method", "SQN", "optimization method")
		probKind = flag.String("problem", "logistic", "objective: logistic or leastsquares")
		m        = flag.Int("m", 1000, "number of samples")
		n        = flag.Int("n", 50, "number of parameters")
		epochs   = flag.Int("epochs", 10, "training epochs")
		batch    = flag.Int("batch", 64, "gradient batch size")
		alpha    = flag.Float64("alpha", 0, "step size (0 = tune)")
		period   = flag.Int("L", 0, "curvature update period (0 = tune)")
		delta    = flag.Float64("delta", 0, "Hessian regularization (0 = tune)")
		steps    = flag.Int("tuning-steps", 10, "random-search trials when tuning")
		workers  = flag.Int("workers", 1, "concurrent tuning trials")
		seed     = flag.Uint64("seed", 1, "RNG seed")
		list     = flag.Bool("list", false, "list methods and exit")
	)
	flag.Parse()

	if *list {
		for _, meth := range optim.Methods() {
			fmt.Println(meth)
		}
		return
	}

	rng := rand.New(rand.NewSource(*seed))
	var prob problem.Problem
	switch *probKind {
	case "logistic":
		prob, _ = problem.SyntheticLogistic(*m, *n, rng)
	case "leastsquares":
		prob, _ = problem.SyntheticLeastSquares(*m, *n, 0.01, rng)
	default:
		fmt.Fprintf(os.Stderr, "unknown problem %q\n", *probKind)
		os.Exit(2)
	}

	result, err := optim.Run(prob, optim.Options{
		Method:      optim.Method(*method),
		Epochs:      *epochs,
		BatchSize:   *batch,
		Alpha:       *alpha,
		L:           *period,
		Delta:       *delta,
		TuningSteps: *steps,
		Workers:     *workers,
		Seed:        *seed,
		Verbose:     true,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("\n%s  alpha=%.3g  L=%d  delta=%.3g\n",
		*method, result.Hyperparams.Alpha, result.Hyperparams.L, result.Hyperparams.Delta)
	fmt.Printf("final loss: %.6g\n", result.FinalLoss())
}
