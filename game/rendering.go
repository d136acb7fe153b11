package game

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/ui"
)

const controlsLegend = "[Click] shoot  [Space] fire  [1/2/3] difficulty  [M] sound  [O] settings  [Tab] overlays"

// Draw renders the game.
func (g *Game) Draw() {
	scene := g.match.Scene()
	sess := g.match.Session()
	now := scene.Now()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	if rl.IsWindowResized() {
		g.background.Resize(w, h)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.background.Draw(float32(now.Sub(g.start).Seconds()))

	bats := scene.Bats()
	var radius func(components.BatView) float32
	if g.overlays.IsEnabled(ui.OverlayHitRadius) {
		radius = scene.HitRadius
	}
	g.batRenderer.Draw(bats, now, radius)
	if g.overlays.IsEnabled(ui.OverlayBatInfo) {
		drawBatInfo(bats, now)
	}
	g.particleRenderer.Draw(g.particles.Particles)

	settings := g.settings.Get()
	g.hud.Draw(ui.HUDData{
		Score:        sess.Score(),
		Kills:        sess.Kills(),
		KillTarget:   sess.Rules().KillTarget,
		TimeLeft:     sess.TimeLeft(),
		Stamina:      sess.Stamina(),
		MaxStamina:   sess.Rules().MaxStamina,
		LiveBats:     scene.LiveCount(),
		MaxBats:      scene.Settings().MaxBats,
		Difficulty:   settings.Difficulty.String(),
		SoundOn:      settings.SoundEnabled,
		FPS:          rl.GetFPS(),
		Finished:     sess.Finished(),
		Outcome:      sess.Outcome().String(),
		ScreenWidth:  w,
		ScreenHeight: h,
		CrosshairX:   g.cfg.Derived.CrosshairX,
		CrosshairY:   g.cfg.Derived.CrosshairY,
	})

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}
	if g.overlays.IsEnabled(ui.OverlayControls) {
		g.controlsPanel.Draw(g.overlays)
	}
	g.hud.DrawControls(h, controlsLegend)

	action := g.settingsPanel.Draw(settings, w, h)
	if action.SetDifficulty {
		g.settings.SetDifficulty(action.Difficulty)
	}
	if action.ToggleSound {
		g.settings.ToggleSound()
	}

	rl.EndDrawing()
}

// drawBatInfo labels each bat with its type, points and remaining life.
func drawBatInfo(bats []components.BatView, now time.Time) {
	for _, b := range bats {
		left := (b.Lifespan - b.Age(now)).Seconds()
		if left < 0 {
			left = 0
		}
		label := fmt.Sprintf("%s %dpt %.1fs", b.Type, b.Points, left)
		rl.DrawText(label, int32(b.X)+30, int32(b.Y)-30, 12, rl.LightGray)
	}
}
