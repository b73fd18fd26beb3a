package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/paulmach/orb"
)

// AgentState is the read-only view of one boid handed to the renderer.
type AgentState struct {
	ID       int
	Position geometry.Vector3D
	Heading  float64 // radians around the vertical axis, 0 faces +z
	Speed    float64
}

// Snapshot is a copy of the flock taken after a frame. The world never touches
// it once sent, so the consumer may keep it as long as it wants.
type Snapshot struct {
	Frame     uint64
	Elapsed   time.Duration
	Agents    []AgentState
	Centroid  geometry.Vector3D
	MeanSpeed float64
	Extent    orb.Bound // horizontal bounding box, x then z
}

func buildSnapshot(flock behavior.Flock, frame uint64, elapsed time.Duration) *Snapshot {
	snapshot := &Snapshot{
		Frame:     frame,
		Elapsed:   elapsed,
		Agents:    make([]AgentState, 0, len(flock)),
		Centroid:  flock.Centroid(),
		MeanSpeed: flock.MeanSpeed(),
	}
	for i, b := range flock {
		snapshot.Agents = append(snapshot.Agents, AgentState{
			ID:       i,
			Position: b.Position,
			Heading:  b.Heading(),
			Speed:    b.Velocity.Len(),
		})
		p := b.Position.Horizontal()
		if i == 0 {
			snapshot.Extent = p.Bound()
			continue
		}
		snapshot.Extent = snapshot.Extent.Extend(p)
	}
	return snapshot
}
