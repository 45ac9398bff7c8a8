// SPDX-License-Identifier: MIT

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReformat(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		year     string
		strategy Strategy
		want     string
	}{
		{
			name:     "MMDDhhmm with year hint",
			raw:      "11020820.BHAR.ncdf",
			year:     "1997",
			strategy: MMDDhhmm{},
			want:     "D1997-11-02T08-20-00.BHAR.ncdf",
		},
		{
			name:     "YYYYMMDD.hhmmss embedded",
			raw:      "eurmmcrmerge.C1.c1.20240924.200822.nc",
			year:     "2024",
			strategy: YYYYMMDDdotHHMMSS{},
			want:     "eurmmcrmerge.C1.c1.D2024-09-24T20-08-22.nc",
		},
		{
			name:     "ddMonYYYY with hour range",
			raw:      "01sep1998.12:00-24:00.mrg.corrected.nc",
			year:     "1998",
			strategy: DDMonYYYYRange{},
			want:     "D1998-09-01T12-00-00.mrg.corrected.nc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reformat(tt.raw, tt.year, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReformatNoMatch(t *testing.T) {
	_, err := Reformat("nopattern", "2024", YYYYMMDDdotHHMMSS{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no match found: "nopattern"`)
}

func TestMMDDhhmmBadYearHint(t *testing.T) {
	_, err := Reformat("11020820.BHAR.ncdf", "97", MMDDhhmm{})
	assert.Error(t, err)
}
