// Package random holds the injectable random source shared by the booking
// flow and the live simulators.
package random

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Source yields integers in the closed range [min, max].
// *gofakeit.Faker satisfies it.
type Source interface {
	Number(min, max int) int
}

// New returns a crypto-seeded faker. Fakers from gofakeit.New guard their
// generator with a mutex, so one can be shared between sessions.
func New() *gofakeit.Faker {
	return gofakeit.New(0)
}

// Seeded returns a deterministic faker for tests and reproducible runs.
func Seeded(seed uint64) *gofakeit.Faker {
	return gofakeit.New(seed)
}

// Pick returns a uniformly chosen element of items. items must not be empty.
func Pick[T any](src Source, items []T) T {
	return items[src.Number(0, len(items)-1)]
}

// Duration returns a uniformly chosen duration in [min, max] at millisecond
// granularity.
func Duration(src Source, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	lo := int(min / time.Millisecond)
	hi := int(max / time.Millisecond)
	return time.Duration(src.Number(lo, hi)) * time.Millisecond
}
