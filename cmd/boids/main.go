package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file")
	headless := flag.Bool("headless", false, "run without a window using the fixed time step")
	frames := flag.Int("frames", 0, "frames to simulate in headless mode, 0 uses the configuration")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			Fatal(err)
		}
	}
	if *frames > 0 {
		cfg.Frames = *frames
	}

	logger, err := simulation.NewLogger(cfg.LogLevel)
	if err != nil {
		Fatal(err)
	}

	ctx := context.Background()
	system, err := actor.NewActorSystem("BoidsWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		Fatal(fmt.Errorf("failed to create actor system: %w", err))
	}
	if err := system.Start(ctx); err != nil {
		Fatal(fmt.Errorf("failed to start actor system: %w", err))
	}

	snapshotCh := make(chan *simulation.Snapshot, 10) // Buffer to avoid blocking
	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(snapshotCh, cfg))
	if err != nil {
		_ = system.Stop(ctx)
		Fatal(fmt.Errorf("failed to spawn world: %w", err))
	}

	if *headless {
		err = runHeadless(ctx, cfg, worldPID, snapshotCh, logger)
	} else {
		ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
		ebiten.SetWindowTitle("Boids 3D (top view)")
		err = ebiten.RunGame(NewGame(ctx, cfg, worldPID, snapshotCh))
	}
	_ = system.Stop(ctx)
	if err != nil {
		Fatal(err)
	}
}

func runHeadless(ctx context.Context, cfg *simulation.Config, worldPID *actor.PID, snapshotCh chan *simulation.Snapshot, logger golog.Logger) error {
	dt := time.Duration(cfg.FixedDeltaTime * float64(time.Second))
	start := time.Now()
	last, err := simulation.RunHeadless(ctx, worldPID, snapshotCh, dt, cfg.Frames)
	if err != nil {
		return err
	}
	if last == nil {
		return fmt.Errorf("no frame simulated")
	}
	logger.Infof("%d frames (%s simulated) in %s | Boids: %d | Mean speed: %.2f | Centroid: %s",
		last.Frame, last.Elapsed, time.Since(start).Round(time.Millisecond),
		len(last.Agents), last.MeanSpeed, last.Centroid)
	return nil
}

// Fatal prints the error and exits with a non zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}
