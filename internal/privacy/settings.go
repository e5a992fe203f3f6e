// Package privacy implements privacy mode: a purely cosmetic degradation of
// note text (dimming, scanlines, colour fringing, shadow) that makes the
// screen harder to read over someone's shoulder.
//
// Settings carry the raw knob values; the derived parameters keep the same
// arithmetic the knobs have always used so stored settings look the same
// after an upgrade.
package privacy

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxMeter      = 255
	MaxIntensity  = 100
	minLineGap    = 2
	maxLineGap    = 10
	baseStrip     = 20
	baseAberAlpha = 10
)

// Settings are the user's privacy-mode knobs.
type Settings struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Meter dims text: 0 leaves it opaque, 255 makes it invisible.
	Meter int `json:"meter" yaml:"meter"`
	// Scanlines is the scanline density, 0 (off) to 100.
	Scanlines int `json:"scanlines" yaml:"scanlines"`
	// Aberration is the chromatic aberration intensity, 0 (off) to 100.
	Aberration int  `json:"aberration" yaml:"aberration"`
	Shadow     bool `json:"shadow" yaml:"shadow"`
}

func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Meter, validation.Min(0), validation.Max(MaxMeter)),
		validation.Field(&s.Scanlines, validation.Min(0), validation.Max(MaxIntensity)),
		validation.Field(&s.Aberration, validation.Min(0), validation.Max(MaxIntensity)),
	)
}

// Alpha is the text opacity.
func (s Settings) Alpha() int {
	return MaxMeter - s.Meter
}

// LineSpacing is the distance between scanlines: 10 at density 0 down to 2.
func (s Settings) LineSpacing() int {
	gap := maxLineGap - s.Scanlines*8/100
	if gap < minLineGap {
		gap = minLineGap
	}
	return gap
}

func (s Settings) StripWidth() int {
	return baseStrip + s.Aberration/2
}

func (s Settings) AberrationAlpha() int {
	return baseAberAlpha + s.Aberration*7/10
}

// AberrationOffset is how far the colour fringe shifts per line.
func (s Settings) AberrationOffset() int {
	return 1 + s.Aberration/25
}
