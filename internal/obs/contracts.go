// SPDX-License-Identifier: MIT

// Package obs orchestrates the observation pipeline: raw instrument
// files in, daily files and cloud masks out, every run tracked as a
// job.
package obs

import (
	"fmt"
	"strings"
	"time"

	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/engine/format"
	"github.com/rinman24/arcobs/internal/engine/transform"
)

// Observatory is an Arctic observation site.
type Observatory string

const (
	Sheba     Observatory = "sheba"
	Eureka    Observatory = "eureka"
	Utqiagvik Observatory = "utqiagvik"
	Oliktok   Observatory = "oliktok"
)

// Instrument is an observing platform at a site.
type Instrument string

const (
	Dabul Instrument = "dabul"
	Mmcr  Instrument = "mmcr"
	Ahsrl Instrument = "ahsrl"
	Kazr  Instrument = "kazr"
	Mpl   Instrument = "mpl"
)

// ParseObservatory accepts an observatory name case-insensitively.
func ParseObservatory(s string) (Observatory, error) {
	switch Observatory(strings.ToLower(s)) {
	case Sheba:
		return Sheba, nil
	case Eureka:
		return Eureka, nil
	case Utqiagvik:
		return Utqiagvik, nil
	case Oliktok:
		return Oliktok, nil
	}
	return "", fmt.Errorf("obs: unknown observatory %q", s)
}

// ParseInstrument accepts an instrument name case-insensitively.
func ParseInstrument(s string) (Instrument, error) {
	switch Instrument(strings.ToLower(s)) {
	case Dabul:
		return Dabul, nil
	case Mmcr:
		return Mmcr, nil
	case Ahsrl:
		return Ahsrl, nil
	case Kazr:
		return Kazr, nil
	case Mpl:
		return Mpl, nil
	}
	return "", fmt.Errorf("obs: unknown instrument %q", s)
}

// DailyRequest selects one observatory, instrument, and month.
type DailyRequest struct {
	Observatory Observatory
	Instrument  Instrument
	Year        int
	Month       time.Month
}

// Validate rejects requests the manager cannot serve.
func (r DailyRequest) Validate() error {
	if _, err := ParseObservatory(string(r.Observatory)); err != nil {
		return err
	}
	if _, err := ParseInstrument(string(r.Instrument)); err != nil {
		return err
	}
	if r.Year < 1970 || r.Year > 9999 {
		return fmt.Errorf("obs: year %d out of range", r.Year)
	}
	if r.Month < time.January || r.Month > time.December {
		return fmt.Errorf("obs: month %d out of range", r.Month)
	}
	return nil
}

// RenameRequest asks for every file in a directory to be renamed into
// the canonical timestamp grammar.
type RenameRequest struct {
	Directory string
	// Extension includes the leading period.
	Extension string
	// Year disambiguates name formats that omit it.
	Year int
	// Format names the filename layout: yyyymmdd, mmddhhmm, or
	// ddmonyyyy.
	Format string
}

func (r RenameRequest) strategy() (format.Strategy, error) {
	return format.ByName(r.Format)
}

// rawStrategy returns the hydration strategy for raw files of the
// pairing.
func rawStrategy(o Observatory, i Instrument) (transform.Strategy, error) {
	switch {
	case o == Sheba && i == Dabul:
		return transform.ShebaDabulRaw{}, nil
	case o == Sheba && i == Mmcr:
		return transform.ShebaMmcrRaw{}, nil
	case o == Eureka && i == Ahsrl:
		return transform.EurekaAhsrlRaw{}, nil
	case o == Eureka && i == Mmcr:
		return transform.EurekaMmcrRaw{}, nil
	case o == Utqiagvik && i == Kazr:
		return transform.UtqiagvikKazrRaw{}, nil
	}
	return nil, fmt.Errorf("obs: no raw strategy for %s/%s", o, i)
}

// dailyStrategy returns the hydration strategy for daily files of the
// pairing.
func dailyStrategy(o Observatory, i Instrument) (transform.Strategy, error) {
	switch {
	case o == Sheba && i == Dabul:
		return transform.ShebaDabulDaily{}, nil
	case o == Sheba && i == Mmcr, o == Eureka && i == Mmcr:
		return transform.ShebaMmcrDaily{}, nil
	}
	return nil, fmt.Errorf("obs: no daily strategy for %s/%s", o, i)
}

// maskSettings configures the cloud mask for one pairing.
type maskSettings struct {
	signal    string
	longName  string
	height    int
	threshold transform.Threshold
}

// Mask windows are 3 samples long with a scale of 100 over I2 daily
// values regardless of instrument.
const (
	maskLength = 3
	maskScale  = 100
)

var maskDType = engine.I2

func maskSettingsFor(o Observatory, i Instrument) (maskSettings, error) {
	switch {
	case o == Sheba && i == Dabul:
		return maskSettings{
			signal:    "far_par",
			longName:  "Lidar Cloud Mask",
			height:    3,
			threshold: transform.Threshold{Value: 55, Direction: transform.GreaterThan},
		}, nil
	case o == Sheba && i == Mmcr, o == Eureka && i == Mmcr:
		return maskSettings{
			signal:    "refl",
			longName:  "Radar Cloud Mask",
			height:    2,
			threshold: transform.Threshold{Value: 10, Direction: transform.LessThan},
		}, nil
	}
	return maskSettings{}, fmt.Errorf("obs: no mask settings for %s/%s", o, i)
}
