package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/policy"
)

// SettingsAction is what the player changed in the settings panel this frame.
type SettingsAction struct {
	Difficulty    policy.Difficulty
	SetDifficulty bool
	ToggleSound   bool
	Close         bool
}

// SettingsPanel is the difficulty and sound screen.
type SettingsPanel struct {
	renderer *Renderer
	visible  bool
}

// NewSettingsPanel creates a hidden settings panel.
func NewSettingsPanel() *SettingsPanel {
	return &SettingsPanel{renderer: NewRenderer()}
}

// Toggle shows or hides the panel and returns the new visibility.
func (p *SettingsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Visible reports whether the panel is shown.
func (p *SettingsPanel) Visible() bool {
	return p.visible
}

// Draw renders the panel centred on screen with raygui buttons.
func (p *SettingsPanel) Draw(current config.Settings, screenW, screenH int32) SettingsAction {
	var action SettingsAction
	if !p.visible {
		return action
	}

	r := p.renderer
	const w, h = 360, 250
	x := screenW/2 - w/2
	y := screenH/2 - h/2
	r.DrawPanel(x, y, w, h)
	r.DrawCentered("Settings", screenW/2, y+14, 24, r.Theme.SectionHeader)

	fx, fy := float32(x+20), float32(y+60)
	rl.DrawText("Difficulty", int32(fx), int32(fy), r.Theme.FontSize, r.Theme.LabelColor)
	fy += 22

	for i, d := range policy.AllDifficulties() {
		label := d.String()
		if d == current.Difficulty {
			label = "> " + label + " <"
		}
		bounds := rl.Rectangle{X: fx + float32(i)*110, Y: fy, Width: 100, Height: 32}
		if gui.Button(bounds, label) && d != current.Difficulty {
			action.Difficulty = d
			action.SetDifficulty = true
		}
	}
	fy += 56

	rl.DrawText("Sound", int32(fx), int32(fy), r.Theme.FontSize, r.Theme.LabelColor)
	fy += 22
	if gui.Button(rl.Rectangle{X: fx, Y: fy, Width: 100, Height: 32}, toggleText(current.SoundEnabled, "On", "Off")) {
		action.ToggleSound = true
	}
	if gui.Button(rl.Rectangle{X: fx + 220, Y: fy, Width: 100, Height: 32}, "Back") {
		action.Close = true
		p.visible = false
	}
	return action
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
