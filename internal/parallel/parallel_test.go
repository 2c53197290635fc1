package parallel

import (
	"sync/atomic"
	"testing"
)

func TestTrials(t *testing.T) {
	var counter int64
	n := 100

	Trials(n, 4, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestTrials_EveryIndexOnce(t *testing.T) {
	n := 50
	seen := make([]int64, n)

	Trials(n, 8, func(i int) {
		atomic.AddInt64(&seen[i], 1)
	})

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d executed %d times", i, c)
		}
	}
}

func TestTrials_Sequential(t *testing.T) {
	var counter int64
	Trials(100, 1, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestTrials_MoreWorkersThanTrials(t *testing.T) {
	var counter int64
	Trials(3, 16, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})

	if counter != 3 {
		t.Errorf("Expected 3, got %d", counter)
	}
}
