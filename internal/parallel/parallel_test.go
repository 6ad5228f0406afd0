package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForSequentialFallback(t *testing.T) {
	cfg := Config{Enabled: false}
	var sum int
	For(100, func(i int) { sum += i }, cfg)
	if sum != 4950 {
		t.Errorf("sum = %d, want 4950", sum)
	}
}

func TestForParallelCoversAllIndices(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	n := 10000
	seen := make([]atomic.Bool, n)
	For(n, func(i int) { seen[i].Store(true) }, cfg)
	for i := range seen {
		if !seen[i].Load() {
			t.Fatalf("index %d not visited", i)
		}
	}
}

func TestForZero(t *testing.T) {
	called := false
	For(0, func(_ int) { called = true }, DefaultConfig())
	if called {
		t.Error("f should not be called for n = 0")
	}
}
