package core

import (
	"math/rand"
	"time"
)

type (
	// Clock abstracts time so expiry sweeps and auto-expiring state
	// (typing indicators) can be driven deterministically in tests.
	Clock interface {
		Now() time.Time
		AfterFunc(d time.Duration, f func()) Timer
	}

	Timer interface {
		Stop() bool
	}

	// Rand abstracts the PRNG behind the background simulators.
	Rand interface {
		Float64() float64
		Intn(n int) int
	}
)

type realClock struct{}

func NewClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
