package behavior

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// Flock is the ordered set of boids, every boid sees every other one.
// Membership is fixed for the whole run.
type Flock []*Boid

// UpdateMode selects how a frame reads the state of the flock.
type UpdateMode int

const (
	// Interleaved runs align, cohesion, separation then update for each boid
	// before moving to the next one, so later boids see the already updated
	// position and velocity of earlier boids within the same frame.
	Interleaved UpdateMode = iota
	// Snapshot computes every steering force against a frozen copy of the
	// flock, then integrates all boids. The result does not depend on order.
	Snapshot
)

func (m UpdateMode) String() string {
	switch m {
	case Interleaved:
		return "interleaved"
	case Snapshot:
		return "snapshot"
	}
	return fmt.Sprintf("UpdateMode(%d)", int(m))
}

// ParseUpdateMode converts a configuration string into an UpdateMode.
// The empty string selects Interleaved.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "interleaved":
		return Interleaved, nil
	case "snapshot":
		return Snapshot, nil
	}
	return Interleaved, fmt.Errorf("unknown update mode %q", s)
}

// NewFlock creates n random boids sharing the same limits.
func NewFlock(n int, rng *rand.Rand, spawnRange float64, limits Limits) (Flock, error) {
	if n < 0 {
		return nil, fmt.Errorf("flock size must be >= 0, got %d", n)
	}
	flock := make(Flock, 0, n)
	for i := 0; i < n; i++ {
		b, err := NewRandom(rng, spawnRange, limits)
		if err != nil {
			return nil, fmt.Errorf("failed to create boid %d: %w", i, err)
		}
		flock = append(flock, b)
	}
	return flock, nil
}

// Step runs one simulation frame of deltaTime seconds.
func (f Flock) Step(deltaTime float64, mode UpdateMode) {
	if mode == Snapshot {
		f.stepSnapshot(deltaTime)
		return
	}
	for _, b := range f {
		b.Align(f)
		b.Cohesion(f)
		b.Separation(f)
		b.Update(deltaTime, f)
	}
}

func (f Flock) stepSnapshot(deltaTime float64) {
	frozen := f.clone()
	for i, b := range f {
		b.align(frozen, frozen[i])
		b.cohesion(frozen, frozen[i])
		b.separation(frozen, frozen[i])
	}
	for _, b := range f {
		b.Update(deltaTime, f)
	}
}

// clone returns a deep copy of the flock, index i of the copy stands for
// index i of f.
func (f Flock) clone() Flock {
	frozen := make(Flock, len(f))
	for i, b := range f {
		c := *b
		frozen[i] = &c
	}
	return frozen
}

// Centroid returns the mean position of the flock.
func (f Flock) Centroid() geometry.Vector3D {
	var sum geometry.Vector3D
	if len(f) == 0 {
		return sum
	}
	for _, b := range f {
		sum = sum.Add(b.Position)
	}
	return sum.Mul(1 / float64(len(f)))
}

// MeanSpeed returns the average velocity magnitude of the flock.
func (f Flock) MeanSpeed() float64 {
	if len(f) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range f {
		sum += b.Velocity.Len()
	}
	return sum / float64(len(f))
}
