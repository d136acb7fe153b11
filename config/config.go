// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/policy"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig       `yaml:"screen"`
	Spawn        SpawnConfig        `yaml:"spawn"`
	Lifespan     LifespanConfig     `yaml:"lifespan"`
	Hit          HitConfig          `yaml:"hit"`
	Reap         ReapConfig         `yaml:"reap"`
	BatTypes     BatTypesConfig     `yaml:"bat_types"`
	Difficulties DifficultiesConfig `yaml:"difficulties"`
	Session      SessionConfig      `yaml:"session"`
	Settings     SettingsConfig     `yaml:"settings"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Autoplayer   AutoplayerConfig   `yaml:"autoplayer"`
	Server       ServerConfig       `yaml:"server"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display and play-area settings.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TargetFPS  int `yaml:"target_fps"`
	EdgeMargin int `yaml:"edge_margin"` // Keeps spawns out of the top/bottom band
}

// SpawnConfig holds warm-up burst parameters.
type SpawnConfig struct {
	WarmupCount     int `yaml:"warmup_count"`
	WarmupSpacingMs int `yaml:"warmup_spacing_ms"`
}

// LifespanConfig bounds the randomized bat lifespan, [min, max).
type LifespanConfig struct {
	MinMs int `yaml:"min_ms"`
	MaxMs int `yaml:"max_ms"`
}

// HitConfig holds hit-test geometry.
type HitConfig struct {
	BaseRadius float64 `yaml:"base_radius"`
}

// ReapConfig holds the lifespan sweep cadence.
type ReapConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// BatTypeConfig is one row of the per-type table.
type BatTypeConfig struct {
	Scale         float64 `yaml:"scale"`
	Points        int     `yaml:"points"`
	Speed         float64 `yaml:"speed"`
	HitMultiplier float64 `yaml:"hit_multiplier"`
}

// BatTypesConfig holds the per-type table.
type BatTypesConfig struct {
	Small BatTypeConfig `yaml:"small"`
	Large BatTypeConfig `yaml:"large"`
	Ghost BatTypeConfig `yaml:"ghost"`
}

// WeightsConfig holds spawn probabilities per bat type.
type WeightsConfig struct {
	Small float64 `yaml:"small"`
	Large float64 `yaml:"large"`
	Ghost float64 `yaml:"ghost"`
}

// DifficultyConfig is one row of the difficulty calibration table.
type DifficultyConfig struct {
	SpawnIntervalMinMs int           `yaml:"spawn_interval_min_ms"`
	SpawnIntervalMaxMs int           `yaml:"spawn_interval_max_ms"`
	MaxBats            int           `yaml:"max_bats"`
	Scale              float64       `yaml:"scale"`
	DepthNear          float64       `yaml:"depth_near"`
	DepthFar           float64       `yaml:"depth_far"`
	Weights            WeightsConfig `yaml:"weights"`
	KillTarget         int           `yaml:"kill_target"`
}

// DifficultiesConfig holds the calibration table.
type DifficultiesConfig struct {
	Easy   DifficultyConfig `yaml:"easy"`
	Medium DifficultyConfig `yaml:"medium"`
	Hard   DifficultyConfig `yaml:"hard"`
}

// SessionConfig holds game session rules.
type SessionConfig struct {
	DurationSec        float64 `yaml:"duration_sec"`
	MaxStamina         float64 `yaml:"max_stamina"`
	ShotCost           float64 `yaml:"shot_cost"`
	MissPenalty        float64 `yaml:"miss_penalty"`         // Extra stamina lost on a miss
	StaminaRegenPerSec float64 `yaml:"stamina_regen_per_sec"`
}

// SettingsConfig holds the initial user settings.
type SettingsConfig struct {
	Difficulty   policy.Difficulty `yaml:"difficulty"`
	SoundEnabled bool              `yaml:"sound_enabled"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowSec      float64 `yaml:"stats_window_sec"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// AutoplayerConfig drives the headless player.
type AutoplayerConfig struct {
	ShotsPerSec float64 `yaml:"shots_per_sec"`
	AimErrorPx  float64 `yaml:"aim_error_px"` // Gaussian sigma
	IdleChance  float64 `yaml:"idle_chance"`  // Chance a shot goes at a random point
}

// ServerConfig holds remote feed parameters.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	TickMs        int    `yaml:"tick_ms"`
	SnapshotEvery int    `yaml:"snapshot_every"` // Ticks between snapshots
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32     float32
	ScreenH32     float32
	EdgeMargin32  float32
	CrosshairX    float32
	CrosshairY    float32
	BaseRadius32  float32
	WarmupSpacing time.Duration
	LifespanMin   time.Duration
	LifespanMax   time.Duration
	ReapInterval  time.Duration
	StatsWindow   time.Duration
	ServerTick    time.Duration
	Policy        *policy.Policy
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Defaults returns a config built from the embedded defaults only.
func Defaults() *Config {
	return MustLoad("")
}

// computeDerived calculates values derived from loaded config and validates them.
func (c *Config) computeDerived() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 2*c.Screen.EdgeMargin {
		return fmt.Errorf("screen %dx%d leaves no room inside margin %d", c.Screen.Width, c.Screen.Height, c.Screen.EdgeMargin)
	}
	if c.Lifespan.MinMs <= 0 || c.Lifespan.MaxMs < c.Lifespan.MinMs {
		return fmt.Errorf("lifespan [%d, %d) ms is invalid", c.Lifespan.MinMs, c.Lifespan.MaxMs)
	}
	if c.Reap.IntervalMs <= 0 {
		return fmt.Errorf("reap interval must be positive, got %d ms", c.Reap.IntervalMs)
	}
	if c.Hit.BaseRadius <= 0 {
		return fmt.Errorf("hit base radius must be positive, got %v", c.Hit.BaseRadius)
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.EdgeMargin32 = float32(c.Screen.EdgeMargin)
	c.Derived.CrosshairX = c.Derived.ScreenW32 / 2
	c.Derived.CrosshairY = c.Derived.ScreenH32 / 2
	c.Derived.BaseRadius32 = float32(c.Hit.BaseRadius)
	c.Derived.WarmupSpacing = ms(c.Spawn.WarmupSpacingMs)
	c.Derived.LifespanMin = ms(c.Lifespan.MinMs)
	c.Derived.LifespanMax = ms(c.Lifespan.MaxMs)
	c.Derived.ReapInterval = ms(c.Reap.IntervalMs)
	c.Derived.StatsWindow = time.Duration(c.Telemetry.StatsWindowSec * float64(time.Second))
	c.Derived.ServerTick = ms(c.Server.TickMs)
	if c.Derived.ServerTick <= 0 {
		c.Derived.ServerTick = 50 * time.Millisecond
	}

	levels := [policy.DifficultyCount]policy.Settings{
		policy.Easy:   c.Difficulties.Easy.settings(policy.Easy),
		policy.Medium: c.Difficulties.Medium.settings(policy.Medium),
		policy.Hard:   c.Difficulties.Hard.settings(policy.Hard),
	}
	for _, s := range levels {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	traits := [components.BatTypeCount]policy.TypeTraits{
		components.BatSmall: c.BatTypes.Small.traits(),
		components.BatLarge: c.BatTypes.Large.traits(),
		components.BatGhost: c.BatTypes.Ghost.traits(),
	}

	c.Derived.Policy = policy.New(levels, traits)
	return nil
}

// settings converts a table row, normalizing weights to sum to 1.
func (d DifficultyConfig) settings(level policy.Difficulty) policy.Settings {
	weights := [components.BatTypeCount]float64{d.Weights.Small, d.Weights.Large, d.Weights.Ghost}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}

	return policy.Settings{
		Difficulty:       level,
		SpawnIntervalMin: ms(d.SpawnIntervalMinMs),
		SpawnIntervalMax: ms(d.SpawnIntervalMaxMs),
		MaxBats:          d.MaxBats,
		ScaleBase:        float32(d.Scale),
		DepthNear:        float32(d.DepthNear),
		DepthFar:         float32(d.DepthFar),
		TypeWeights:      weights,
		KillTarget:       d.KillTarget,
	}
}

func (b BatTypeConfig) traits() policy.TypeTraits {
	return policy.TypeTraits{
		Scale:         float32(b.Scale),
		Points:        b.Points,
		Speed:         float32(b.Speed),
		HitMultiplier: float32(b.HitMultiplier),
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
