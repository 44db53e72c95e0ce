// Package clock abstracts time and identifier generation so services can be
// tested against pinned values.
package clock

import (
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
	NewID() uuid.UUID
}

type systemClock struct{}

// System returns the wall clock. Timestamps are always UTC.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) NewID() uuid.UUID {
	return uuid.New()
}
