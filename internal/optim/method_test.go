package optim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqn-ml/sqn/internal/memory"
)

func TestResolve_UnknownMethod(t *testing.T) {
	_, err := resolve(Options{Method: "BFGS-9000"})
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := resolve(Options{Method: SQN})
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Epochs)
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, 64, cfg.BatchSizeHess)
	assert.Equal(t, 256, cfg.BatchSizeFun)
	assert.Equal(t, 20, cfg.Memory)
	assert.Equal(t, 100, cfg.FisherMemory)
	assert.Equal(t, 10, cfg.TuningSteps)
	assert.Equal(t, uint64(1), cfg.Seed)
	assert.Equal(t, memory.InitBB, cfg.Init)
}

func TestResolve_LimitedMemoryCorrection(t *testing.T) {
	var warnings bytes.Buffer
	cfg, err := resolve(Options{Method: OLBFGS, Memory: -1, LogOutput: &warnings})
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Memory, "unbounded request must fall back to the default window")
	assert.Contains(t, warnings.String(), "limited-memory")
}

func TestResolve_FullMemoryIgnoresWindow(t *testing.T) {
	var warnings bytes.Buffer
	cfg, err := resolve(Options{Method: RES, Memory: 30, LogOutput: &warnings})
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Memory)
	assert.Contains(t, warnings.String(), "ignored")
}

func TestResolve_AdaQNInitializer(t *testing.T) {
	cfg, err := resolve(Options{Method: AdaQN})
	require.NoError(t, err)
	assert.Equal(t, memory.InitRMS, cfg.Init, "adaQN defaults to the RMS initializer")

	cfg, err = resolve(Options{Method: AdaQN, Init: memory.InitAdaGrad})
	require.NoError(t, err)
	assert.Equal(t, memory.InitAdaGrad, cfg.Init, "an explicit AdaGrad choice survives")
}

func TestResolve_DeltaForcedToZero(t *testing.T) {
	var warnings bytes.Buffer
	cfg, err := resolve(Options{Method: DOLBFGS, Delta: 0.05, LogOutput: &warnings})
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Delta, "non-regularized methods cannot carry a delta")
	assert.Contains(t, warnings.String(), "regularization")
}

func TestMethodTable_MemoryDiscipline(t *testing.T) {
	full := map[Method]bool{RES: true, SDBFGS: true, OBFGS: true, DOBFGS: true}
	for _, m := range Methods() {
		assert.Equal(t, full[m], methods[m].fullMemory, "method %s", m)
	}
}
