package random

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationStaysInBounds(t *testing.T) {
	src := Seeded(7)
	for i := 0; i < 500; i++ {
		d := Duration(src, time.Second, 3*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

func TestDurationCollapsedRange(t *testing.T) {
	assert.Equal(t, time.Second, Duration(Seeded(1), time.Second, time.Second))
	assert.Equal(t, time.Second, Duration(Seeded(1), time.Second, 0))
}

func TestPickCoversPool(t *testing.T) {
	src := Seeded(11)
	pool := []string{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[Pick(src, pool)] = true
	}
	assert.Len(t, seen, len(pool))
}

func TestSeededIsDeterministic(t *testing.T) {
	a, b := Seeded(99), Seeded(99)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Number(0, 1000), b.Number(0, 1000))
	}
}

func TestSharedFakerIsConcurrencySafe(t *testing.T) {
	var src Source = Seeded(1)
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				n := src.Number(1, 6)
				if n < 1 || n > 6 {
					t.Errorf("out of range: %d", n)
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
