package optim

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sqn-ml/sqn/internal/parallel"
	"github.com/sqn-ml/sqn/internal/problem"
)

// Tuning ranges, sampled log-uniformly.
const (
	alphaLo, alphaHi   = 1e-6, 1e2
	periodLo, periodHi = 2, 64
	deltaLo, deltaHi   = 1e-5, 1e-1
)

// Run trains prob with the configured method. When every hyperparameter the
// method needs is supplied it performs a single trial; otherwise it runs
// TuningSteps randomized trials and returns the one with the lowest
// final-epoch loss.
//
// Trial i draws everything from a private RNG seeded with Seed+i, so results
// are identical whether trials run sequentially or across Workers
// goroutines.
func Run(prob problem.Problem, opts Options) (*Result, error) {
	cfg, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	steps := 1
	if tuningNeeded(cfg) {
		steps = cfg.TuningSteps
	}

	t := &trial{cfg: cfg, prob: prob}
	results := make([]*Result, steps)
	trialErrs := make([]error, steps)
	parallel.Trials(steps, cfg.Workers, func(i int) {
		rng := rand.New(rand.NewSource(cfg.Seed + uint64(i)))
		hp := fillHyperparams(cfg, rng)
		results[i], trialErrs[i] = t.run(rng, hp)
	})

	var best *Result
	for i := 0; i < steps; i++ {
		if trialErrs[i] != nil {
			if errors.Is(trialErrs[i], ErrDivergedLoss) {
				if cfg.Verbose {
					cfg.logger.Printf("%s  trial %d discarded: %v", cfg.Method, i+1, trialErrs[i])
				}
				continue
			}
			return nil, trialErrs[i]
		}
		if better(results[i], best) {
			best = results[i]
		}
	}
	if best == nil {
		return nil, errors.WithMessagef(ErrAllTrialsDiverged,
			"%d of %d trials; increase TuningSteps, change the Seed, or supply Alpha/L/Delta manually", steps, steps)
	}
	return best, nil
}

// better reports whether cand strictly improves on the best trial so far.
func better(cand, best *Result) bool {
	if best == nil {
		return true
	}
	return cand.FinalLoss() < best.FinalLoss()
}

// tuningNeeded reports whether any hyperparameter the method consumes was
// left at zero.
func tuningNeeded(cfg *config) bool {
	if cfg.Alpha == 0 {
		return true
	}
	if cfg.spec.family.usesPeriod() && cfg.L == 0 {
		return true
	}
	if cfg.spec.regularized && cfg.Delta == 0 {
		return true
	}
	return false
}

// fillHyperparams keeps supplied hyperparameters and samples the missing
// ones from the fixed log-uniform ranges. Hyperparameters the method does
// not consume are pinned to their neutral values.
func fillHyperparams(cfg *config, rng *rand.Rand) Hyperparams {
	hp := Hyperparams{Alpha: cfg.Alpha, L: cfg.L, Delta: cfg.Delta}
	if hp.Alpha == 0 {
		hp.Alpha = logUniform(rng, alphaLo, alphaHi)
	}
	if cfg.spec.family.usesPeriod() {
		if hp.L == 0 {
			hp.L = samplePeriod(rng)
		}
	} else {
		hp.L = 1
	}
	if cfg.spec.regularized {
		if hp.Delta == 0 {
			hp.Delta = logUniform(rng, deltaLo, deltaHi)
		}
	} else {
		hp.Delta = 0
	}
	return hp
}

func logUniform(rng *rand.Rand, lo, hi float64) float64 {
	u := distuv.Uniform{Min: math.Log(lo), Max: math.Log(hi), Src: rng}
	return math.Exp(u.Rand())
}

func samplePeriod(rng *rand.Rand) int {
	l := int(math.Round(logUniform(rng, periodLo, periodHi)))
	if l < periodLo {
		l = periodLo
	}
	if l > periodHi {
		l = periodHi
	}
	return l
}
