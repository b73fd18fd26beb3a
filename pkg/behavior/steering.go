package behavior

import "github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"

// Steering rules. Each one scans the whole flock (brute force, O(n) per boid),
// accumulates into a local vector and ends with steer(): the boid never counts
// itself, whatever its position.

// Align steers toward the mean velocity of the neighbors.
func (b *Boid) Align(flock Flock) {
	b.align(flock, b)
}

// Cohesion steers toward the centroid of the neighbors.
func (b *Boid) Cohesion(flock Flock) {
	b.cohesion(flock, b)
}

// Separation steers away from the neighbors, weighting each one by the inverse
// fourth power of its horizontal distance so that close neighbors dominate.
func (b *Boid) Separation(flock Flock) {
	b.separation(flock, b)
}

// isNeighbor reports whether other is inside the perception radius of b.
// self is the flock member standing for b, it differs from b when the flock
// is a frozen copy (see Flock.Step with Snapshot).
func (b *Boid) isNeighbor(other, self *Boid) (float64, bool) {
	if other == self {
		return 0, false
	}
	d := b.Position.HorizontalDistanceTo(other.Position)
	return d, d < b.perception
}

func (b *Boid) align(flock Flock, self *Boid) {
	var avg geometry.Vector3D
	total := 0
	for _, other := range flock {
		if _, ok := b.isNeighbor(other, self); ok {
			avg = avg.Add(other.Velocity)
			total++
		}
	}
	if total > 0 {
		avg = avg.Mul(1 / float64(total)).Sub(b.Velocity)
	}
	b.steer(avg, total)
}

func (b *Boid) cohesion(flock Flock, self *Boid) {
	var avg geometry.Vector3D
	total := 0
	for _, other := range flock {
		if _, ok := b.isNeighbor(other, self); ok {
			avg = avg.Add(other.Position)
			total++
		}
	}
	if total > 0 {
		avg = avg.Mul(1 / float64(total)).Sub(b.Position)
	}
	b.steer(avg, total)
}

func (b *Boid) separation(flock Flock, self *Boid) {
	var avg geometry.Vector3D
	total := 0
	for _, other := range flock {
		d, ok := b.isNeighbor(other, self)
		if !ok {
			continue
		}
		total++
		d4 := d * d * d * d
		if d4 == 0 {
			// coincident on the horizontal plane: no direction to flee
			continue
		}
		avg = avg.Add(b.Position.Sub(other.Position).Mul(1 / d4))
	}
	if total > 0 {
		avg = avg.Mul(1 / float64(total))
	}
	b.steer(avg, total)
}

// steer is the tail shared by the three rules: the velocity is pulled back to
// top speed, then a non zero accumulator is applied with magnitude maxForce.
// Without neighbors, or when the accumulator cancels out, no force is applied.
func (b *Boid) steer(avg geometry.Vector3D, total int) {
	b.Velocity = b.Velocity.SetLength(b.topSpeed)
	if total == 0 || avg.IsZero() || !avg.IsFinite() {
		return
	}
	b.ApplyForce(avg.SetLength(b.maxForce))
}
