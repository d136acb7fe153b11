package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds everything the in-game HUD shows.
type HUDData struct {
	Score      int
	Kills      int
	KillTarget int
	TimeLeft   time.Duration
	Stamina    float64
	MaxStamina float64
	LiveBats   int
	MaxBats    int
	Difficulty string
	SoundOn    bool
	FPS        int32

	// Set once the session has ended
	Finished bool
	Outcome  string

	ScreenWidth  int32
	ScreenHeight int32
	CrosshairX   float32
	CrosshairY   float32
}

// HUD renders the heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	th := r.Theme

	// Score and kills, top left
	r.DrawPanel(10, 10, 240, 96)
	rl.DrawText(fmt.Sprintf("%d", data.Score), 20, 16, 32, th.ScoreColor)
	y := int32(52)
	y = r.DrawLabelValue(20, y, "Kills", fmt.Sprintf("%d / %d", data.Kills, data.KillTarget))
	r.DrawEnergyBar(20, y, "Stamina", float32(data.Stamina), float32(data.MaxStamina), 230)

	// Countdown, top centre
	timerColor := th.ValueColor
	if data.TimeLeft < 10*time.Second {
		timerColor = th.WarnColor
	}
	r.DrawCentered(FormatCountdown(data.TimeLeft), data.ScreenWidth/2, 14, 32, timerColor)

	// Bats counter, top right
	counter := fmt.Sprintf("Bats %d/%d", data.LiveBats, data.MaxBats)
	w := rl.MeasureText(counter, th.HeaderFontSize)
	rl.DrawText(counter, data.ScreenWidth-w-20, 16, th.HeaderFontSize, th.LabelColor)

	sound := "sound on"
	if !data.SoundOn {
		sound = "muted"
	}
	status := fmt.Sprintf("%s | %s | %d fps", data.Difficulty, sound, data.FPS)
	w = rl.MeasureText(status, th.FontSize)
	rl.DrawText(status, data.ScreenWidth-w-20, 38, th.FontSize, th.LabelColor)

	if !data.Finished {
		h.DrawCrosshair(data.CrosshairX, data.CrosshairY)
		return
	}

	// Result banner
	r.DrawPanel(data.ScreenWidth/2-220, data.ScreenHeight/2-70, 440, 140)
	r.DrawCentered(OutcomeTitle(data.Outcome), data.ScreenWidth/2, data.ScreenHeight/2-50, th.BigFontSize, th.SectionHeader)
	r.DrawCentered(fmt.Sprintf("Score %d", data.Score), data.ScreenWidth/2, data.ScreenHeight/2+4, 22, th.ValueColor)
	r.DrawCentered("[Enter] play again", data.ScreenWidth/2, data.ScreenHeight/2+36, th.FontSize, th.LabelColor)
}

// DrawCrosshair draws the fixed gun sight.
func (h *HUD) DrawCrosshair(x, y float32) {
	c := h.renderer.Theme.Crosshair
	rl.DrawCircleLines(int32(x), int32(y), 18, c)
	rl.DrawLineEx(rl.Vector2{X: x - 28, Y: y}, rl.Vector2{X: x - 8, Y: y}, 2, c)
	rl.DrawLineEx(rl.Vector2{X: x + 8, Y: y}, rl.Vector2{X: x + 28, Y: y}, 2, c)
	rl.DrawLineEx(rl.Vector2{X: x, Y: y - 28}, rl.Vector2{X: x, Y: y - 8}, 2, c)
	rl.DrawLineEx(rl.Vector2{X: x, Y: y + 8}, rl.Vector2{X: x, Y: y + 28}, 2, c)
	rl.DrawCircle(int32(x), int32(y), 2, c)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// FormatCountdown renders d as m:ss, rounding partial seconds up.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// OutcomeTitle returns the banner text for a finished session.
func OutcomeTitle(outcome string) string {
	switch outcome {
	case "won":
		return "You Win!"
	case "lost_stamina":
		return "Out of Stamina"
	case "lost_time":
		return "Time's Up"
	default:
		return "Game Over"
	}
}
