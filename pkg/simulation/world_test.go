package simulation

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.NumBoids = 30
	cfg.Seed = 42
	return cfg
}

var systemCount atomic.Int32

func startWorld(t *testing.T, cfg *Config) (context.Context, *actor.PID, chan *Snapshot) {
	t.Helper()
	ctx := context.Background()

	system, err := actor.NewActorSystem(fmt.Sprintf("BoidsTest%d", systemCount.Add(1)), actor.WithLogger(golog.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	t.Cleanup(func() { _ = system.Stop(ctx) })

	snapshots := make(chan *Snapshot, 1)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(snapshots, cfg))
	require.NoError(t, err)
	return ctx, pid, snapshots
}

func TestBuildSnapshot(t *testing.T) {
	l := behavior.DefaultLimits()
	a, err := behavior.New(geometry.Vector3D{X: -3, Y: 1, Z: 4}, geometry.Vector3D{Z: 6}, l)
	require.NoError(t, err)
	b, err := behavior.New(geometry.Vector3D{X: 5, Y: -1, Z: -2}, geometry.Vector3D{X: 6}, l)
	require.NoError(t, err)

	snap := buildSnapshot(behavior.Flock{a, b}, 3, 50*time.Millisecond)

	assert.Equal(t, uint64(3), snap.Frame)
	assert.Equal(t, 50*time.Millisecond, snap.Elapsed)
	require.Len(t, snap.Agents, 2)
	assert.Equal(t, 1, snap.Agents[1].ID)
	assert.Equal(t, b.Position, snap.Agents[1].Position)
	assert.InDelta(t, 0, snap.Agents[0].Heading, 1e-12)
	assert.InDelta(t, math.Pi/2, snap.Agents[1].Heading, 1e-12)
	assert.InDelta(t, 6, snap.Agents[0].Speed, 1e-12)
	assert.True(t, snap.Centroid.Eq(geometry.Vector3D{X: 1, Y: 0, Z: 1}))
	assert.InDelta(t, 6, snap.MeanSpeed, 1e-12)
	assert.Equal(t, orb.Bound{Min: orb.Point{-3, -2}, Max: orb.Point{5, 4}}, snap.Extent)
}

func TestBuildSnapshot_IsACopy(t *testing.T) {
	flock, _, err := newFlock(testConfig())
	require.NoError(t, err)

	snap := buildSnapshot(flock, 0, 0)
	before := snap.Agents[0].Position
	flock.Step(0.1, behavior.Interleaved)

	assert.Equal(t, before, snap.Agents[0].Position)
}

func TestNewFlock_FromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.UpdateMode = "snapshot"

	flock, mode, err := newFlock(cfg)
	require.NoError(t, err)
	assert.Len(t, flock, 30)
	assert.Equal(t, behavior.Snapshot, mode)
	assert.Equal(t, cfg.Perception, flock[0].Perception())

	cfg.Mass = 0
	_, _, err = newFlock(cfg)
	assert.ErrorIs(t, err, behavior.ErrInvalidLimits)

	cfg = testConfig()
	cfg.UpdateMode = "sideways"
	_, _, err = newFlock(cfg)
	assert.Error(t, err)
}

func TestWorldActor_advance(t *testing.T) {
	w := NewWorldActor(nil, testConfig())
	flock, mode, err := newFlock(w.cfg)
	require.NoError(t, err)
	w.flock, w.mode = flock, mode

	start := flock[0].Position
	w.advance(100 * time.Millisecond)
	assert.Equal(t, uint64(1), w.frame)
	assert.Equal(t, 100*time.Millisecond, w.elapsed)
	assert.NotEqual(t, start, flock[0].Position)

	moved := flock[0].Position
	w.advance(0)
	assert.Equal(t, uint64(2), w.frame)
	assert.Equal(t, 100*time.Millisecond, w.elapsed)
	assert.Equal(t, moved, flock[0].Position)

	// no consumer: pushing must not block
	w.pushSnapshot()
}

func TestWorldActor_TickProducesSnapshot(t *testing.T) {
	ctx, pid, snapshots := startWorld(t, testConfig())

	require.NoError(t, actor.Tell(ctx, pid, NewTick(time.Second/60)))

	select {
	case snap := <-snapshots:
		assert.Equal(t, uint64(1), snap.Frame)
		assert.Len(t, snap.Agents, 30)
		for _, a := range snap.Agents {
			assert.InDelta(t, 6, a.Speed, 1e-9)
			assert.LessOrEqual(t, math.Abs(a.Position.X), 25.0)
			assert.LessOrEqual(t, math.Abs(a.Position.Z), 25.0)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot received")
	}
}

func TestWorldActor_InvalidConfigFailsSpawn(t *testing.T) {
	ctx := context.Background()
	system, err := actor.NewActorSystem("BoidsInvalid", actor.WithLogger(golog.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	defer func() { _ = system.Stop(ctx) }()

	cfg := testConfig()
	cfg.TopSpeed = -1
	_, err = system.Spawn(ctx, "world", NewWorldActor(make(chan *Snapshot, 1), cfg))
	assert.Error(t, err)
}

func TestRunHeadless(t *testing.T) {
	cfg := testConfig()
	ctx, pid, snapshots := startWorld(t, cfg)

	last, err := RunHeadless(ctx, pid, snapshots, 20*time.Millisecond, 25)
	require.NoError(t, err)
	require.NotNil(t, last)

	assert.Equal(t, uint64(25), last.Frame)
	assert.Equal(t, 500*time.Millisecond, last.Elapsed)
	assert.InDelta(t, cfg.TopSpeed, last.MeanSpeed, 1e-9)
	assert.True(t, last.Extent.Min[0] >= -cfg.WorldHalfExtent && last.Extent.Max[0] <= cfg.WorldHalfExtent)
}

func TestRunHeadless_SameSeedSameFlock(t *testing.T) {
	run := func() *Snapshot {
		ctx, pid, snapshots := startWorld(t, testConfig())
		last, err := RunHeadless(ctx, pid, snapshots, 16*time.Millisecond, 40)
		require.NoError(t, err)
		return last
	}
	assert.Equal(t, run().Agents, run().Agents)
}
