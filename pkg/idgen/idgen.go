// Package idgen generates note identifiers.
package idgen

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/pocket/pkg/core"
)

const (
	alphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength = 8
)

// Clock produces ids made of the current time in base36 followed by a
// random base36 suffix, e.g. "m2k9x1c0q7f3zt1a". Ids sort roughly by
// creation time and are unique within a session with very high probability.
type Clock struct {
	now func() time.Time
}

// NewClock returns a Clock generator reading the wall clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt returns a Clock generator with a custom time source.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

func (g *Clock) Next() string {
	prefix := strconv.FormatInt(g.now().UnixMilli(), 36)

	var raw [suffixLength]byte
	_, _ = rand.Read(raw[:])

	suffix := make([]byte, suffixLength)
	for i, b := range raw {
		suffix[i] = alphabet[int(b)%len(alphabet)]
	}
	return prefix + string(suffix)
}

// UUID produces random (version 4) UUIDs.
type UUID struct{}

func (UUID) Next() string {
	return uuid.NewString()
}

// ByName returns the generator registered under name ("time" or "uuid").
func ByName(name string) (core.IDGenerator, error) {
	switch name {
	case "", "time":
		return NewClock(), nil
	case "uuid":
		return UUID{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", name)
	}
}
