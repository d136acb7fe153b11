// Package game runs a match locally, either headless with an autoplayer or
// in a raylib window with sound.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/nightbats/anim"
	"github.com/pthm-cable/nightbats/audio"
	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/core"
	"github.com/pthm-cable/nightbats/renderer"
	"github.com/pthm-cable/nightbats/session"
	"github.com/pthm-cable/nightbats/systems"
	"github.com/pthm-cable/nightbats/telemetry"
	"github.com/pthm-cable/nightbats/ui"
)

// DT is the simulated time per frame.
const DT = time.Second / 60

// restartDelay is how long the result banner stays up in graphical mode.
const restartDelay = 3 * time.Second

// Options configures a Game.
type Options struct {
	Seed        int64
	LogStats    bool
	StatsWindow time.Duration // 0 = use config
	OutputDir   string
	Headless    bool
}

// Game holds the complete game state.
type Game struct {
	cfg      *config.Config
	rng      *rand.Rand
	settings *config.SettingsStore
	match    *core.Match

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector
	logStats      bool

	autoplayer *core.Autoplayer
	headless   bool
	tick       int32
	start      time.Time
	finishedAt time.Time

	// Graphics and sound, nil in headless mode
	player           *audio.Player
	background       *renderer.BackgroundRenderer
	batRenderer      *renderer.BatRenderer
	particles        *systems.ParticleSystem
	particleRenderer *renderer.ParticleRenderer
	hud              *ui.HUD
	settingsPanel    *ui.SettingsPanel
	overlays         *ui.OverlayRegistry
	controlsPanel    *ui.ControlsPanel
	perfPanel        *ui.PerfPanel
	unsubscribeSound func()
}

// NewGame creates a game and starts its first session. In graphical mode the
// raylib window must already be open.
func NewGame(cfg *config.Config, opts Options) *Game {
	start := time.Now()
	window := cfg.Derived.StatsWindow
	if opts.StatsWindow > 0 {
		window = opts.StatsWindow
	}

	g := &Game{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		settings:      config.NewSettingsStore(cfg.Settings),
		collector:     telemetry.NewCollector(window, start),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		logStats:      opts.LogStats,
		headless:      opts.Headless,
		start:         start,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.match = core.NewMatch(cfg, g.settings, core.MatchOptions{
		Seed:      opts.Seed,
		Start:     start,
		Collector: g.collector,
		Output:    om,
	})
	g.match.OnFinish(g.sessionFinished)

	if opts.Headless {
		g.autoplayer = core.NewAutoplayer(cfg.Autoplayer, core.BoundsFromConfig(cfg), g.rng)
	} else {
		g.initGraphics()
	}

	g.match.Start()
	return g
}

func (g *Game) initGraphics() {
	w, h := int32(g.cfg.Screen.Width), int32(g.cfg.Screen.Height)

	g.player = audio.NewPlayer(g.settings.Get().SoundEnabled)
	if err := g.player.Init(); err != nil {
		slog.Warn("audio unavailable, continuing without sound", "error", err)
	}
	g.unsubscribeSound = g.settings.Subscribe(func(s config.Settings) {
		g.player.SetEnabled(s.SoundEnabled)
	})

	g.background = renderer.NewBackgroundRenderer(w, h, 140, g.rng)
	g.batRenderer = renderer.NewBatRenderer(anim.NewAnimator(g.rng))
	g.particles = systems.NewParticleSystem(400, g.rng)
	g.particleRenderer = renderer.NewParticleRenderer()
	g.hud = ui.NewHUD()
	g.settingsPanel = ui.NewSettingsPanel()
	g.overlays = ui.NewOverlayRegistry()
	g.controlsPanel = ui.NewControlsPanel(10, 120, 220)
	g.perfPanel = ui.NewPerfPanel(w-230, 60)
}

func (g *Game) sessionFinished(sum session.Summary) {
	g.finishedAt = g.match.Clock().Now()
	if g.player == nil || sum.Outcome == session.Aborted {
		return
	}
	if sum.Outcome == session.Won {
		g.player.Play(audio.CueWin)
	} else {
		g.player.Play(audio.CueLose)
	}
}

// UpdateHeadless runs one frame without graphics: the autoplayer shoots,
// simulated time advances by DT and finished sessions restart at once.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	scene := g.match.Scene()
	if x, y, ok := g.autoplayer.Aim(scene.Now(), scene.Bats()); ok {
		g.match.Tap(x, y)
	}

	g.perfCollector.StartPhase(telemetry.PhaseTimers)
	g.match.Step(DT)

	g.perfCollector.StartPhase(telemetry.PhaseSession)
	if g.match.Session().Finished() {
		g.match.Start()
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	g.tick++
}

// Update runs one graphical frame.
func (g *Game) Update() {
	g.perfCollector.StartTick()
	g.perfCollector.RecordFrame()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	g.handleInput()

	g.perfCollector.StartPhase(telemetry.PhaseTimers)
	g.match.Step(DT)
	g.particles.Update()

	g.perfCollector.StartPhase(telemetry.PhaseSession)
	now := g.match.Clock().Now()
	if g.match.Session().Finished() && now.Sub(g.finishedAt) >= restartDelay {
		g.match.Start()
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	g.tick++
}

// shoot resolves a player shot and plays its feedback.
func (g *Game) shoot(x, y float32, fire bool) {
	var res session.ShotResult
	if fire {
		res = g.match.Fire()
	} else {
		res = g.match.Tap(x, y)
	}
	if !res.Accepted {
		return
	}

	if res.Hit {
		g.particles.EmitHit(x, y)
		g.player.Play(audio.CueHit)
	} else {
		g.particles.EmitMiss(x, y)
		g.player.Play(audio.CueMiss)
	}
}

// Unload releases resources and flushes output.
func (g *Game) Unload() {
	g.match.Close()
	if g.unsubscribeSound != nil {
		g.unsubscribeSound()
	}
	if g.player != nil {
		g.player.Close()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}
}

// Tick returns the number of frames run.
func (g *Game) Tick() int32 {
	return g.tick
}

// Match returns the running match.
func (g *Game) Match() *core.Match {
	return g.match
}
