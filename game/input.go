package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nightbats/policy"
)

// handleInput processes mouse and keyboard input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	// Settings screen
	if rl.IsKeyPressed(rl.KeyO) {
		g.settingsPanel.Toggle()
	}
	if g.settingsPanel.Visible() {
		// The panel's buttons consume clicks while it is open
		return
	}

	switch {
	case rl.IsKeyPressed(rl.KeyOne):
		g.settings.SetDifficulty(policy.Easy)
	case rl.IsKeyPressed(rl.KeyTwo):
		g.settings.SetDifficulty(policy.Medium)
	case rl.IsKeyPressed(rl.KeyThree):
		g.settings.SetDifficulty(policy.Hard)
	}
	if rl.IsKeyPressed(rl.KeyM) {
		g.settings.ToggleSound()
	}
	g.overlays.HandleKeys()

	if g.match.Session().Finished() {
		if rl.IsKeyPressed(rl.KeyEnter) {
			g.match.Start()
		}
		return
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		pos := rl.GetMousePosition()
		g.shoot(pos.X, pos.Y, false)
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.shoot(g.cfg.Derived.CrosshairX, g.cfg.Derived.CrosshairY, true)
	}
}
