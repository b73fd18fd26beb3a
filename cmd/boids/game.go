package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
)

var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

// Game renders the flock seen from above: x grows to the right, z grows downward.
type Game struct {
	ctx        context.Context
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	cfg        *simulation.Config

	lastTick       time.Time
	paused         bool
	showPerception bool

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

func NewGame(ctx context.Context, cfg *simulation.Config, worldPID *actor.PID, snapshotCh chan *simulation.Snapshot) *Game {
	return &Game{
		ctx:            ctx,
		worldPID:       worldPID,
		snapshotCh:     snapshotCh,
		lastState:      &simulation.Snapshot{}, // Avoid nil pointer
		cfg:            cfg,
		lastTick:       time.Now(),
		showPerception: cfg.ShowPerception,
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.showPerception = !g.showPerception
	}

	// Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// Use previous state if new one isn't ready
	}

	// the clock keeps running while paused so resuming does not jump
	now := time.Now()
	elapsed := now.Sub(g.lastTick)
	g.lastTick = now
	if g.paused {
		return nil
	}
	return actor.Tell(g.ctx, g.worldPID, simulation.NewTick(elapsed))
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})
	g.drawWorldBorder(screen)

	for _, agent := range g.lastState.Agents {
		x, y := g.toScreen(agent.Position.X, agent.Position.Z)
		if g.showPerception {
			vector.StrokeCircle(screen, x, y, float32(g.cfg.Perception*g.cfg.PixelsPerUnit), 1,
				color.RGBA{R: 50, G: 100, B: 255, A: 60}, true)
		}
		drawBoid(screen, x, y, agent.Heading, altitudeShade(agent.Position.Y, g.cfg.SpawnRange))
	}

	mode := "running"
	if g.paused {
		mode = "paused"
	}
	msg := fmt.Sprintf("Boids: %d (%s, %s)\nFrame: %d  Sim time: %.1fs\nMean speed: %.2f\nCentroid: %s\n\nFPS: %.2f\nTPS: %.2f\nUpdate: %.2fms\nDraw:   %.2fms\n\n[Space] pause  [P] perception",
		len(g.lastState.Agents), g.cfg.UpdateMode, mode,
		g.lastState.Frame, g.lastState.Elapsed.Seconds(),
		g.lastState.MeanSpeed,
		g.lastState.Centroid,
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.ScreenWidth, g.cfg.ScreenHeight }

// toScreen maps a horizontal world position to pixels, the world origin at the screen center.
func (g *Game) toScreen(x, z float64) (float32, float32) {
	return float32(float64(g.cfg.ScreenWidth)/2 + x*g.cfg.PixelsPerUnit),
		float32(float64(g.cfg.ScreenHeight)/2 + z*g.cfg.PixelsPerUnit)
}

func (g *Game) drawWorldBorder(screen *ebiten.Image) {
	w := g.cfg.WorldHalfExtent
	x0, y0 := g.toScreen(-w, -w)
	x1, y1 := g.toScreen(w, w)
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, color.RGBA{R: 80, G: 80, B: 120, A: 255}, true)
}

// altitudeShade makes boids flying higher brighter, y is unbounded so it saturates at ±spawnRange.
func altitudeShade(y, spawnRange float64) float32 {
	if spawnRange <= 0 {
		return 1
	}
	t := (y/spawnRange + 1) / 2
	return float32(0.35 + 0.65*math.Max(0, math.Min(1, t)))
}

func drawBoid(screen *ebiten.Image, x, y float32, heading float64, shade float32) {
	// heading is measured from +z toward +x, turn it into a screen angle from +x toward +y
	angle := math.Pi/2 - heading
	cx, cy := float64(x), float64(y)

	tipX := cx + math.Cos(angle)*6
	tipY := cy + math.Sin(angle)*6
	rightX := cx + math.Cos(angle+2.5)*5
	rightY := cy + math.Sin(angle+2.5)*5
	leftX := cx + math.Cos(angle-2.5)*5
	leftY := cy + math.Sin(angle-2.5)*5

	r, g, b := 0.4*shade, 0.8*shade, shade
	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: 1},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: 1},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: 1},
	}
	indices := []uint16{0, 1, 2}

	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}
