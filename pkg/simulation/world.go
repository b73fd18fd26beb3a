package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
)

// ErrSnapshotTimeout is returned by RunHeadless when the world stops answering.
var ErrSnapshotTimeout = errors.New("no snapshot received from the world")

// WorldActor owns the flock. It is the only writer of boid state: every frame
// tick is processed in its mailbox, one at a time.
type WorldActor struct {
	cfg   *Config
	mode  behavior.UpdateMode
	flock behavior.Flock

	frame   uint64
	elapsed time.Duration

	// Communication with UI
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	framesSinceLog int
	lastLogTime    time.Time
}

// NewWorldActor creates the world logic unit
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

// NewTick builds the frame message carrying the elapsed time since the previous frame.
func NewTick(d time.Duration) *durationpb.Duration {
	return durationpb.New(d)
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	flock, mode, err := newFlock(w.cfg)
	if err != nil {
		return err
	}
	w.flock = flock
	w.mode = mode
	ctx.ActorSystem().Logger().Infof("World spawned %d boids (%s update)", len(flock), mode)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")

	// The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		w.advance(msg.AsDuration())
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d frames", w.frame)
	return nil
}

func newFlock(cfg *Config) (behavior.Flock, behavior.UpdateMode, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, mode, err
	}
	flock, err := behavior.NewFlock(cfg.NumBoids, cfg.NewRand(), cfg.SpawnRange, cfg.Limits())
	if err != nil {
		return nil, mode, fmt.Errorf("failed to create flock: %w", err)
	}
	return flock, mode, nil
}

// advance runs one frame. A non positive elapsed time still counts as a frame,
// the kernel turns it into a no-op.
func (w *WorldActor) advance(d time.Duration) {
	w.flock.Step(d.Seconds(), w.mode)
	w.frame++
	w.framesSinceLog++
	if d > 0 {
		w.elapsed += d
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		snapshot := buildSnapshot(w.flock, w.frame, w.elapsed)
		ctx.Logger().Infof("📊 FRAME RATE: %d/sec | Boids: %d | Mean speed: %.2f | Extent: %.1f x %.1f",
			w.framesSinceLog, len(w.flock), snapshot.MeanSpeed,
			snapshot.Extent.Right()-snapshot.Extent.Left(),
			snapshot.Extent.Top()-snapshot.Extent.Bottom())
		w.framesSinceLog = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- buildSnapshot(w.flock, w.frame, w.elapsed):
	default:
		// UI busy, skip frame
	}
}

// RunHeadless drives the world for frames ticks of dt each, waiting for the
// snapshot of every frame before sending the next tick. It returns the last one.
func RunHeadless(ctx context.Context, worldPID *actor.PID, snapshots <-chan *Snapshot, dt time.Duration, frames int) (*Snapshot, error) {
	var last *Snapshot
	for i := 0; i < frames; i++ {
		if err := actor.Tell(ctx, worldPID, NewTick(dt)); err != nil {
			return last, fmt.Errorf("failed to send tick %d: %w", i, err)
		}
		select {
		case last = <-snapshots:
		case <-time.After(5 * time.Second):
			return last, fmt.Errorf("frame %d: %w", i, ErrSnapshotTimeout)
		case <-ctx.Done():
			return last, ctx.Err()
		}
	}
	return last, nil
}
