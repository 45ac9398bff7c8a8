// SPDX-License-Identifier: MIT

// Package chrono implements the canonical filename timestamp grammar
// used throughout the pipeline: DYYYY-MM-DDThh-mm-ss. Raw instrument
// files are renamed into this grammar on ingest so every later stage
// can recover the acquisition time from the name alone.
package chrono

import (
	"fmt"
	"regexp"
	"time"
)

// Precision selects how much of the grammar must be present in a name.
type Precision uint8

const (
	// ToSecond matches DYYYY-MM-DDThh-mm-ss.
	ToSecond Precision = iota
	// ToDay matches DYYYY-MM-DD; the time of day reads as midnight.
	ToDay
	// ToMonth matches DYYYY-MM; the day reads as the first.
	ToMonth
)

var (
	datetimePattern = regexp.MustCompile(`D[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}-[0-9]{2}-[0-9]{2}`)
	datePattern     = regexp.MustCompile(`D[0-9]{4}-[0-9]{2}-[0-9]{2}`)
	monthPattern    = regexp.MustCompile(`D[0-9]{4}-[0-9]{2}`)
)

// DateTime is a broken-out UTC timestamp.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Time returns the equivalent time.Time in UTC.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, 0, time.UTC)
}

// Unix returns seconds since the Unix epoch.
func (dt DateTime) Unix() int64 {
	return dt.Time().Unix()
}

// Midnight returns the DateTime truncated to the start of its day.
func (dt DateTime) Midnight() DateTime {
	return DateTime{Year: dt.Year, Month: dt.Month, Day: dt.Day}
}

// FromTime converts a time.Time (interpreted in UTC) to a DateTime.
func FromTime(t time.Time) DateTime {
	t = t.UTC()
	return DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Extract pulls a DateTime out of a file name at the requested precision.
func Extract(name string, precision Precision) (DateTime, error) {
	var dt DateTime
	switch precision {
	case ToSecond:
		m := datetimePattern.FindString(name)
		if m == "" {
			return dt, fmt.Errorf("no timestamp in %q", name)
		}
		fmt.Sscanf(m, "D%4d-%2d-%2dT%2d-%2d-%2d",
			&dt.Year, &dt.Month, &dt.Day, &dt.Hour, &dt.Minute, &dt.Second)
	case ToDay:
		m := datePattern.FindString(name)
		if m == "" {
			return dt, fmt.Errorf("no date in %q", name)
		}
		fmt.Sscanf(m, "D%4d-%2d-%2d", &dt.Year, &dt.Month, &dt.Day)
	case ToMonth:
		m := monthPattern.FindString(name)
		if m == "" {
			return dt, fmt.Errorf("no month in %q", name)
		}
		fmt.Sscanf(m, "D%4d-%2d", &dt.Year, &dt.Month)
		dt.Day = 1
	default:
		return dt, fmt.Errorf("unknown precision %d", precision)
	}
	return dt, nil
}

// Stamp renders a DateTime in the full grammar.
func Stamp(dt DateTime) string {
	return fmt.Sprintf("D%04d-%02d-%02dT%02d-%02d-%02d",
		dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// StampDate renders only the date portion of the grammar.
func StampDate(dt DateTime) string {
	return fmt.Sprintf("D%04d-%02d-%02d", dt.Year, dt.Month, dt.Day)
}
