package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/writer/internal/privacy"
)

const privacySample = "The quick brown fox jumps over the lazy dog.\nPack my box with five dozen liquor jugs.\nSphinx of black quartz, judge my vow."

// askInt reads an integer, keeping current on empty input.
func (a *App) askInt(prompt string, current, max int) (int, error) {
	for {
		s, err := GetSimpleText(a.reader, fmt.Sprintf("%s (0-%d) [%d]", prompt, max, current), a.out)
		if err != nil {
			return 0, err
		}
		if s == "" {
			return current, nil
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= 0 && n <= max {
			return n, nil
		}
		a.printf("Enter a number from 0 to %d.\n", max)
	}
}

// Privacy walks through the privacy mode settings and stores them.
func (a *App) Privacy(ctx context.Context) error {
	ps := a.renderer.Settings()
	a.printf("Privacy mode is %s.\n", onOff(ps.Enabled))

	var err error
	if ps.Enabled, err = Confirm(a.reader, "Enable privacy mode?", a.out); err != nil {
		return err
	}
	if ps.Enabled {
		if ps.Meter, err = a.askInt("Dimming", ps.Meter, privacy.MaxMeter); err != nil {
			return err
		}
		if ps.Scanlines, err = a.askInt("Scanlines", ps.Scanlines, privacy.MaxIntensity); err != nil {
			return err
		}
		if ps.Aberration, err = a.askInt("Chromatic aberration", ps.Aberration, privacy.MaxIntensity); err != nil {
			return err
		}
		if ps.Shadow, err = Confirm(a.reader, "Shadow behind text?", a.out); err != nil {
			return err
		}
	}

	if err := a.settings.SetPrivacy(ctx, ps); err != nil {
		return err
	}
	a.renderer.SetSettings(ps)
	a.printf("Privacy mode %s.\n", onOff(ps.Enabled))
	if ps.Enabled {
		a.println(a.renderer.Render(privacySample))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
