package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchema string

type Config struct {
	// Population
	NumBoids   int     `json:"numBoids"`
	SpawnRange float64 `json:"spawnRange"` // initial position and velocity components in [-r, r)

	// World
	WorldHalfExtent float64 `json:"worldHalfExtent"` // x and z wrap on [-w, w]

	// Kinematic limits shared by every boid
	TopSpeed   float64 `json:"topSpeed"`
	Mass       float64 `json:"mass"`
	MaxForce   float64 `json:"maxForce"`
	Perception float64 `json:"perception"`

	Seed       uint64 `json:"seed"` // 0 picks a time based seed
	UpdateMode string `json:"updateMode"`

	// Headless runs
	FixedDeltaTime float64 `json:"fixedDeltaTime"`
	Frames         int     `json:"frames"`

	// Window
	ScreenWidth    int     `json:"screenWidth"`
	ScreenHeight   int     `json:"screenHeight"`
	PixelsPerUnit  float64 `json:"pixelsPerUnit"`
	ShowPerception bool    `json:"showPerception"`

	LogLevel string `json:"logLevel"`
}

func DefaultConfig() *Config {
	return &Config{
		NumBoids:        100,
		SpawnRange:      25,
		WorldHalfExtent: behavior.DefaultHalfExtent,
		TopSpeed:        6,
		Mass:            1,
		MaxForce:        4,
		Perception:      2,
		UpdateMode:      behavior.Interleaved.String(),
		FixedDeltaTime:  1.0 / 60,
		Frames:          600,
		ScreenWidth:     800,
		ScreenHeight:    800,
		PixelsPerUnit:   14,
		LogLevel:        "info",
	}
}

// Limits returns the kinematic limits given to every boid of the flock.
func (c *Config) Limits() behavior.Limits {
	return behavior.Limits{
		TopSpeed:   c.TopSpeed,
		Mass:       c.Mass,
		MaxForce:   c.MaxForce,
		Perception: c.Perception,
		HalfExtent: c.WorldHalfExtent,
	}
}

func (c *Config) Mode() (behavior.UpdateMode, error) {
	return behavior.ParseUpdateMode(c.UpdateMode)
}

// NewRand returns the random source used to spawn the flock.
// The same non zero seed always produces the same flock.
func (c *Config) NewRand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// LoadConfig loads configuration from a JSON or TOML file and validates it against
// the embedded schema. Keys absent from the file keep their DefaultConfig value.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Normalize to a JSON document, TOML tables become JSON objects
	if strings.EqualFold(filepath.Ext(configFile), ".toml") {
		var doc map[string]interface{}
		if err := toml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
		if b, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("failed to convert config toml: %w", err)
		}
	}

	// 4. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 5. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
