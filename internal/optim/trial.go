package optim

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/sqn-ml/sqn/internal/curvature"
	"github.com/sqn-ml/sqn/internal/memory"
	"github.com/sqn-ml/sqn/internal/problem"
)

// trial owns one complete training run: a fresh iterate, fresh curvature
// state, and a private RNG. Nothing survives across trials except the
// returned Result.
type trial struct {
	cfg  *config
	prob problem.Problem
}

// run executes the epoch/batch loop under the given hyperparameters. It
// returns ErrDivergedLoss the moment any batch or epoch loss goes
// non-finite; the caller decides whether that ends the whole run.
func (t *trial) run(rng *rand.Rand, hp Hyperparams) (*Result, error) {
	cfg := t.cfg
	dim := t.prob.Dim()
	m := t.prob.NumSamples()

	model, strat := t.build(rng, hp)

	iters := m / t.effectiveBatchCost(hp)
	if iters < 1 {
		iters = 1
	}

	w := t.prob.Init()
	wPrev := make([]float64, dim)
	g := make([]float64, dim)
	dir := make([]float64, dim)

	hist := make([]float64, 0, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		epochLoss := 0.0
		for it := 0; it < iters; it++ {
			idx := curvature.SampleWithReplacement(rng, m, cfg.BatchSize)

			loss := t.prob.Func(w, idx)
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return nil, errors.WithMessagef(ErrDivergedLoss, "epoch %d", epoch)
			}
			epochLoss += loss

			t.prob.Grad(g, w, idx)
			copy(wPrev, w)
			model.Direction(dir, g)
			floats.AddScaled(w, -hp.Alpha, dir)

			strat.AfterStep(curvature.StepInfo{WPrev: wPrev, W: w, Grad: g, Indices: idx})
		}

		avg := epochLoss / float64(iters)
		if math.IsNaN(avg) || math.IsInf(avg, 0) {
			return nil, errors.WithMessagef(ErrDivergedLoss, "epoch %d", epoch)
		}
		hist = append(hist, avg)
		if cfg.Verbose {
			cfg.logger.Printf("%s  epoch %d  loss=%.6f", cfg.Method, epoch, avg)
		}
	}

	return &Result{LossHistory: hist, Hyperparams: hp, Iterate: w}, nil
}

// build instantiates the curvature model and update strategy the method
// dispatcher selected.
func (t *trial) build(rng *rand.Rand, hp Hyperparams) (memory.Model, curvature.Strategy) {
	cfg := t.cfg
	dim := t.prob.Dim()

	switch cfg.spec.family {
	case famHessVec:
		win := memory.NewWindow(dim, cfg.Memory, cfg.Init)
		return win, curvature.NewHessianVector(win, t.prob, rng, curvature.HessianVectorConfig{
			Every:     hp.L,
			Damping:   cfg.spec.damping,
			BatchHess: cfg.BatchSizeHess,
		})

	case famFisher:
		win := memory.NewWindow(dim, cfg.Memory, cfg.Init)
		fisher := curvature.NewFisher(dim, cfg.FisherMemory)
		monIdx := curvature.SampleWithReplacement(rng, t.prob.NumSamples(), cfg.BatchSizeFun)
		return win, curvature.NewAdaQN(win, fisher, t.prob, curvature.AdaQNConfig{
			Every:  hp.L,
			MonIdx: monIdx,
		})

	default: // famGradDiff
		gcfg := curvature.GradientDiffConfig{Damping: cfg.spec.damping, Delta: hp.Delta}
		if cfg.spec.fullMemory {
			dense := memory.NewDense(dim)
			return dense, curvature.NewGradientDiffDense(dense, t.prob, gcfg)
		}
		win := memory.NewWindow(dim, cfg.Memory, cfg.Init)
		return win, curvature.NewGradientDiff(win, t.prob, gcfg)
	}
}

// effectiveBatchCost is the per-iteration sample cost that sizes an epoch:
// the gradient batch, plus the amortized share of the periodic Hessian or
// monitoring evaluations.
func (t *trial) effectiveBatchCost(hp Hyperparams) int {
	cost := t.cfg.BatchSize
	switch t.cfg.spec.family {
	case famHessVec:
		cost += t.cfg.BatchSizeHess / hp.L
	case famFisher:
		cost += t.cfg.BatchSizeFun / hp.L
	}
	return cost
}
