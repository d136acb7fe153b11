package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nightbats/telemetry"
)

// ControlsPanel lists the overlays and their keys.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	all := overlays.All()
	panelHeight := int32(len(all)+1)*lineHeight + padding*2 + 4
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, r.Theme.HeaderFontSize, rl.White)
	y += lineHeight + 4

	for _, desc := range all {
		c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
		y += lineHeight
	}
	return c.y + panelHeight
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+3, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// PerfPanel renders frame timing from the perf collector.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// Draw renders the panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	r.DrawPanel(p.x, p.y, 220, 130)

	y := r.DrawSectionHeader(p.x+10, p.y+8, "Frame Timing")
	y = r.DrawLabelValue(p.x+10, y, "Avg", stats.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(p.x+10, y, "P95", stats.P95TickDuration.Round(time.Microsecond).String())

	for _, phase := range telemetry.Phases() {
		pct := stats.PhasePct[phase]
		color := r.Theme.LabelColor
		if pct > 50 {
			color = r.Theme.WarnColor
		}
		rl.DrawText(fmt.Sprintf("%-10s %5.1f%%", phase, pct), p.x+10, y, r.Theme.FontSize, color)
		y += r.Theme.LineHeight - 4
	}
}
