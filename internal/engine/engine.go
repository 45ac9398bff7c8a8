// SPDX-License-Identifier: MIT

// Package engine defines the scalar vocabulary shared by the filtering,
// formatting, and transformation engines: storage dtypes, physical units,
// dimensions, and value scales.
package engine

import "fmt"

// DType identifies the integer storage type of an extracted variable.
type DType uint8

const (
	I1 DType = iota
	I2
	I4
	I8
	U1
	U2
	U4
	U8
)

func (d DType) String() string {
	switch d {
	case I1:
		return "i1"
	case I2:
		return "i2"
	case I4:
		return "i4"
	case I8:
		return "i8"
	case U1:
		return "u1"
	case U2:
		return "u2"
	case U4:
		return "u4"
	case U8:
		return "u8"
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// ParseDType is the inverse of String.
func ParseDType(s string) (DType, error) {
	for _, d := range []DType{I1, I2, I4, I8, U1, U2, U4, U8} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dtype %q", s)
}

func (d DType) signed() bool {
	return d <= I8
}

func (d DType) bits() uint {
	switch d {
	case I1, U1:
		return 8
	case I2, U2:
		return 16
	case I4, U4:
		return 32
	default:
		return 64
	}
}

// Min returns the smallest representable value. It doubles as the flag
// for missing or invalid samples.
func (d DType) Min() int64 {
	if !d.signed() {
		return 0
	}
	return -(int64(1) << (d.bits() - 1))
}

// Max returns the largest representable value.
func (d DType) Max() int64 {
	if d.signed() {
		return int64(1)<<(d.bits()-1) - 1
	}
	if d.bits() == 64 {
		// Value storage is int64, so u8 saturates there.
		return int64(^uint64(0) >> 1)
	}
	return int64(1)<<d.bits() - 1
}

// Units identifies the physical units of a variable.
type Units uint8

const (
	UnitsNone Units = iota
	UnitsUnspecified
	UnitsSeconds
	UnitsMeters
	UnitsMetersPerSecond
	UnitsDegrees
	UnitsDBZ
	UnitsCelsius
	UnitsPercent
	UnitsGramsPerMeterSquare
	UnitsWattsPerMeterSquare
)

func (u Units) String() string {
	switch u {
	case UnitsNone:
		return "none"
	case UnitsUnspecified:
		return "unspecified"
	case UnitsSeconds:
		return "seconds"
	case UnitsMeters:
		return "meters"
	case UnitsMetersPerSecond:
		return "meters_per_second"
	case UnitsDegrees:
		return "degrees"
	case UnitsDBZ:
		return "dbz"
	case UnitsCelsius:
		return "celsius"
	case UnitsPercent:
		return "percent"
	case UnitsGramsPerMeterSquare:
		return "grams_per_meter_square"
	case UnitsWattsPerMeterSquare:
		return "watts_per_meter_square"
	}
	return fmt.Sprintf("units(%d)", uint8(u))
}

// Dimension identifies a physical axis of the data.
type Dimension uint8

const (
	Time Dimension = iota
	Level
	Layer
	Angle
)

func (d Dimension) String() string {
	switch d {
	case Time:
		return "time"
	case Level:
		return "level"
	case Layer:
		return "layer"
	case Angle:
		return "angle"
	}
	return fmt.Sprintf("dimension(%d)", uint8(d))
}

// Scale is the factor stored values must be divided by to recover
// physical quantities.
type Scale float64

const (
	ScaleOneTenThousandth Scale = 1e-4
	ScaleOne              Scale = 1
	ScaleTen              Scale = 10
	ScaleHundred          Scale = 100
	ScaleThousand         Scale = 1000
	ScaleSecondsPerHour   Scale = 3600
)
