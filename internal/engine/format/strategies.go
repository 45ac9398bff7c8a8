// SPDX-License-Identifier: MIT

package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rinman24/arcobs/internal/chrono"
)

// ByName resolves a filename layout name to its strategy: yyyymmdd,
// mmddhhmm, or ddmonyyyy.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "yyyymmdd":
		return YYYYMMDDdotHHMMSS{}, nil
	case "mmddhhmm":
		return MMDDhhmm{}, nil
	case "ddmonyyyy":
		return DDMonYYYYRange{}, nil
	}
	return nil, fmt.Errorf("unknown filename format %q", name)
}

// MMDDhhmm handles eight-digit names such as "11020820.BHAR.ncdf".
// The year is not encoded and must be supplied; seconds read as zero.
type MMDDhhmm struct{}

var mmddhhmmPattern = regexp.MustCompile(`[0-9]{8}`)

func (MMDDhhmm) Pattern() *regexp.Regexp { return mmddhhmmPattern }

func (MMDDhhmm) Extract(target, yearHint string) (chrono.DateTime, error) {
	if len(yearHint) != 4 {
		return chrono.DateTime{}, fmt.Errorf("year hint %q must be four digits", yearHint)
	}
	return chrono.DateTime{
		Year:   atoi4(yearHint),
		Month:  atoi2(target[0:2]),
		Day:    atoi2(target[2:4]),
		Hour:   atoi2(target[4:6]),
		Minute: atoi2(target[6:8]),
	}, nil
}

// YYYYMMDDdotHHMMSS handles names such as
// "eurmmcrmerge.C1.c1.20240924.200822.nc".
type YYYYMMDDdotHHMMSS struct{}

var yyyymmddPattern = regexp.MustCompile(`[0-9]{8}.[0-9]{6}`)

func (YYYYMMDDdotHHMMSS) Pattern() *regexp.Regexp { return yyyymmddPattern }

func (YYYYMMDDdotHHMMSS) Extract(target, _ string) (chrono.DateTime, error) {
	return chrono.DateTime{
		Year:   atoi4(target[0:4]),
		Month:  atoi2(target[4:6]),
		Day:    atoi2(target[6:8]),
		Hour:   atoi2(target[9:11]),
		Minute: atoi2(target[11:13]),
		Second: atoi2(target[13:15]),
	}, nil
}

// DDMonYYYYRange handles names such as "01sep1998.12:00-24:00.mrg.corrected.nc".
// The stamp reads from the start of the covered interval.
type DDMonYYYYRange struct{}

var ddmonPattern = regexp.MustCompile(`[0-9]{2}[a-z]{3}[0-9]{4}\.[0-9]{2}:[0-9]{2}-[0-9]{2}:[0-9]{2}`)

var monthsByName = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func (DDMonYYYYRange) Pattern() *regexp.Regexp { return ddmonPattern }

func (DDMonYYYYRange) Extract(target, _ string) (chrono.DateTime, error) {
	month, ok := monthsByName[strings.ToLower(target[2:5])]
	if !ok {
		return chrono.DateTime{}, fmt.Errorf("unknown month %q", target[2:5])
	}
	return chrono.DateTime{
		Year:   atoi4(target[5:9]),
		Month:  month,
		Day:    atoi2(target[0:2]),
		Hour:   atoi2(target[10:12]),
		Minute: atoi2(target[13:15]),
	}, nil
}
