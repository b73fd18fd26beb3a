package behavior

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// DefaultHalfExtent is the half size of the cubic world, positions on the
// horizontal plane live in [-DefaultHalfExtent, DefaultHalfExtent].
const DefaultHalfExtent = 25.0

// ErrInvalidLimits is returned when a boid is built with kinematic limits
// that cannot drive the integrator (zero mass, non positive top speed...).
var ErrInvalidLimits = errors.New("invalid boid limits")

// Limits holds the kinematic constants of a boid. They never change during
// the lifetime of the boid.
type Limits struct {
	TopSpeed   float64 // exact speed enforced at the end of every update
	Mass       float64 // force to acceleration conversion: a = F / m
	MaxForce   float64 // magnitude of every steering force
	Perception float64 // neighbor radius measured on the horizontal plane

	// HalfExtent is the world wrap-around boundary, zero means DefaultHalfExtent.
	HalfExtent float64
}

// DefaultLimits returns the limits used by the reference flock.
func DefaultLimits() Limits {
	return Limits{
		TopSpeed:   6,
		Mass:       1,
		MaxForce:   4,
		Perception: 2,
		HalfExtent: DefaultHalfExtent,
	}
}

func (l Limits) validate() error {
	positive := func(name string, v float64) error {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite value > 0, got %v", ErrInvalidLimits, name, v)
		}
		return nil
	}
	if err := positive("topSpeed", l.TopSpeed); err != nil {
		return err
	}
	if err := positive("mass", l.Mass); err != nil {
		return err
	}
	if err := positive("maxForce", l.MaxForce); err != nil {
		return err
	}
	if err := positive("perception", l.Perception); err != nil {
		return err
	}
	if l.HalfExtent < 0 || math.IsNaN(l.HalfExtent) || math.IsInf(l.HalfExtent, 0) {
		return fmt.Errorf("%w: halfExtent must be a finite value >= 0, got %v", ErrInvalidLimits, l.HalfExtent)
	}
	return nil
}

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// The name "boid" corresponds to a shortened version of "bird-oid object".
// https://en.wikipedia.org/wiki/Boids
//
// Position, Velocity and Acceleration are exported so the renderer can read
// them; only the boid itself writes them during a frame.
type Boid struct {
	Position     geometry.Vector3D
	Velocity     geometry.Vector3D
	Acceleration geometry.Vector3D

	topSpeed   float64
	mass       float64
	maxForce   float64
	perception float64
	halfExtent float64

	heading float64
}

// New creates a boid at position moving with velocity.
// It fails fast when limits are not usable by the integrator.
func New(position, velocity geometry.Vector3D, limits Limits) (*Boid, error) {
	if err := limits.validate(); err != nil {
		return nil, err
	}
	halfExtent := limits.HalfExtent
	if halfExtent == 0 {
		halfExtent = DefaultHalfExtent
	}
	return &Boid{
		Position:   position,
		Velocity:   velocity,
		topSpeed:   limits.TopSpeed,
		mass:       limits.Mass,
		maxForce:   limits.MaxForce,
		perception: limits.Perception,
		halfExtent: halfExtent,
		heading:    math.Atan2(velocity.X, velocity.Z),
	}, nil
}

// NewRandom creates a boid whose position and velocity components are drawn
// uniformly in [-spawnRange, spawnRange).
func NewRandom(rng *rand.Rand, spawnRange float64, limits Limits) (*Boid, error) {
	random := func() float64 {
		return 2*spawnRange*rng.Float64() - spawnRange
	}
	position := geometry.Vector3D{X: random(), Y: random(), Z: random()}
	velocity := geometry.Vector3D{X: random(), Y: random(), Z: random()}
	return New(position, velocity, limits)
}

// TopSpeed returns the constant speed of the boid.
func (b *Boid) TopSpeed() float64 { return b.topSpeed }

// Mass returns the mass used to convert forces into acceleration.
func (b *Boid) Mass() float64 { return b.mass }

// MaxForce returns the magnitude given to every steering force.
func (b *Boid) MaxForce() float64 { return b.maxForce }

// Perception returns the neighbor radius on the horizontal plane.
func (b *Boid) Perception() float64 { return b.perception }

// HalfExtent returns the wrap-around boundary of the world.
func (b *Boid) HalfExtent() float64 { return b.halfExtent }

// Heading returns the facing angle around the vertical axis,
// atan2(velocity.x, velocity.z), as computed by the last update.
func (b *Boid) Heading() float64 { return b.heading }

// ApplyForce accumulates force/mass into the acceleration of the current frame.
// force is received by value, the caller's vector is left untouched.
func (b *Boid) ApplyForce(force geometry.Vector3D) {
	b.Acceleration = b.Acceleration.Add(force.Mul(1 / b.mass))
}

// Update advances the boid by deltaTime seconds, consuming the acceleration
// accumulated since the previous update.
// flock is part of the per-frame contract but is not read by the integrator.
func (b *Boid) Update(deltaTime float64, flock Flock) {
	if deltaTime <= 0 || math.IsNaN(deltaTime) || math.IsInf(deltaTime, 0) {
		// no-op frame, forces still must not leak into the next one
		b.Acceleration = geometry.Vector3D{}
		return
	}

	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(deltaTime))
	b.Velocity = b.Velocity.ClampLength(b.topSpeed)

	b.Position = b.Position.Add(b.Velocity.Mul(deltaTime))

	b.heading = math.Atan2(b.Velocity.X, b.Velocity.Z)

	b.wrapEdges()

	b.Acceleration = geometry.Vector3D{}

	// constant speed boids: not a cap, the speed is reset every frame
	b.Velocity = b.Velocity.SetLength(b.topSpeed)
}

// wrapEdges keeps x and z inside [-halfExtent, halfExtent], leaving the world on
// one side re-enters from the opposite side with the same overshoot.
// The vertical axis is not bounded.
func (b *Boid) wrapEdges() {
	b.Position.X = wrap(b.Position.X, b.halfExtent)
	b.Position.Z = wrap(b.Position.Z, b.halfExtent)
}

func wrap(v, halfExtent float64) float64 {
	size := 2 * halfExtent
	switch {
	case v > halfExtent:
		return math.Mod(v+halfExtent, size) - halfExtent
	case v < -halfExtent:
		return halfExtent - math.Mod(halfExtent-v, size)
	}
	return v
}
