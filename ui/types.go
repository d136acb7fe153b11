// Package ui draws the game HUD, the settings panel and debug overlays.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	ScoreColor     rl.Color
	WarnColor      rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Crosshair      rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	BigFontSize    int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 15, G: 12, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 80, G: 60, B: 120, A: 255},
		SectionHeader:  rl.Color{R: 255, G: 200, B: 80, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		ScoreColor:     rl.Color{R: 255, G: 200, B: 80, A: 255},
		WarnColor:      rl.Color{R: 230, G: 80, B: 80, A: 255},
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillMedium:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:    rl.Color{R: 100, G: 200, B: 100, A: 255},
		Crosshair:      rl.Color{R: 255, G: 255, B: 255, A: 200},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     70,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 16,
		BigFontSize:    40,
	}
}

// EnergyColor picks the bar fill for a ratio in [0, 1].
func (t Theme) EnergyColor(ratio float32) rl.Color {
	switch {
	case ratio < 0.3:
		return t.BarFillLow
	case ratio < 0.6:
		return t.BarFillMedium
	default:
		return t.BarFillHigh
	}
}
