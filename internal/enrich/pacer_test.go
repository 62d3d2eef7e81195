package enrich

import (
	"testing"
	"time"
)

func TestPacerSpacesCalls(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)

	start := time.Now()
	p.WaitTurn()
	p.WaitTurn()
	p.WaitTurn()
	elapsed := time.Since(start)

	if elapsed < 40*time.Millisecond {
		t.Fatalf("three turns took %v, want at least two intervals", elapsed)
	}
}

func TestPacerZeroIntervalNeverBlocks(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		p.WaitTurn()
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("zero-interval pacer blocked for %v", elapsed)
	}
}

func TestPacerNegativeIntervalClamped(t *testing.T) {
	p := NewPacer(-time.Second)
	done := make(chan struct{})
	go func() {
		p.WaitTurn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("negative-interval pacer blocked")
	}
}
