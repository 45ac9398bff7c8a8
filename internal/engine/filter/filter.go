// SPDX-License-Identifier: MIT

// Package filter selects the subset of instrument content belonging to
// a single UTC day. NamesByDate works on file names via the timestamp
// grammar; IndicesByDate works on hydrated datasets via epoch and
// offset variables.
package filter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/engine/transform"
)

// ErrEmptyDay reports that no sample in the given content falls on the
// target day.
var ErrEmptyDay = errors.New("no samples on target day")

const secondsPerDay = 86400

// NamesByDate returns the names whose embedded timestamps fall on the
// target day. Raw files hold roughly an hour of data each, so the file
// straddling midnight on either side is included as well: the last file
// before the day when the day does not start exactly at midnight, and
// the first file after it. Names must be sorted; the result is sorted.
func NamesByDate(target chrono.DateTime, names []string, precision chrono.Precision) ([]string, error) {
	start := target.Midnight().Unix()
	end := start + secondsPerDay

	var results []string
	var previous string
	for _, entry := range names {
		dt, err := chrono.Extract(entry, precision)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", entry, err)
		}
		current := dt.Unix()
		switch {
		case current == start:
			results = append(results, entry)
		case start < current && current < end:
			if len(results) == 0 && previous != "" {
				results = append(results, previous)
			}
			results = append(results, entry)
		case current == end:
			return sorted(results), nil
		case current > end:
			if len(results) > 0 {
				results = append(results, entry)
			}
			return sorted(results), nil
		default:
			previous = entry
		}
	}
	return sorted(results), nil
}

func sorted(names []string) []string {
	sort.Strings(names)
	return names
}

// IndicesByDate merges the samples from content that fall on the target
// day into a single dataset. Sample membership is decided per dataset
// from its epoch variable plus each offset. Variables not indexed by
// time are taken from the first dataset contributing samples; variables
// indexed by time are concatenated across contributing datasets, with
// offsets rebased onto the kept epoch. Variable metadata comes from the
// first element of content.
//
// Returns ErrEmptyDay when no dataset contributes a sample.
func IndicesByDate(target chrono.DateTime, content []*transform.InstrumentData) (*transform.InstrumentData, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDay
	}
	masks, err := dayMasks(target, content)
	if err != nil {
		return nil, err
	}

	scalars := make(map[string]int64)
	vectors := make(map[string][]int64)
	matrices := make(map[string][][]int64)

	// Variables not indexed by time come from the first contributing
	// dataset only.
	var keptEpoch int64
	found := false
	for i, data := range content {
		if !anyTrue(masks[i]) {
			continue
		}
		for name, v := range data.Variables {
			if timeIndexed(v) {
				continue
			}
			switch v.Rank() {
			case 0:
				scalars[name] = v.Scalar
			case 1:
				vectors[name] = append([]int64(nil), v.Vector...)
			case 2:
				matrices[name] = copyMatrix(v.Matrix)
			}
		}
		keptEpoch = data.Variables["epoch"].Scalar
		found = true
		break
	}
	if !found {
		return nil, ErrEmptyDay
	}

	// Variables indexed by time concatenate across every contributing
	// dataset.
	for i, data := range content {
		if !anyTrue(masks[i]) {
			continue
		}
		initial := data.Variables["epoch"].Scalar
		for name, v := range data.Variables {
			if !timeIndexed(v) {
				continue
			}
			switch v.Rank() {
			case 1:
				if v.Units == engine.UnitsSeconds {
					for j, offset := range v.Vector {
						if masks[i][j] {
							vectors[name] = append(vectors[name], initial+offset-keptEpoch)
						}
					}
					continue
				}
				for j, value := range v.Vector {
					if masks[i][j] {
						vectors[name] = append(vectors[name], value)
					}
				}
			case 2:
				for j, row := range v.Matrix {
					if masks[i][j] {
						matrices[name] = append(matrices[name], append([]int64(nil), row...))
					}
				}
			}
		}
	}

	meta := content[0]
	dims := mergedDimensions(meta, vectors)

	result := transform.NewInstrumentData()
	result.Dimensions = dims
	for name, v := range meta.Variables {
		nv := &transform.Variable{
			Dimensions: variableDimensions(v, dims),
			DType:      v.DType,
			LongName:   v.LongName,
			Units:      v.Units,
			Scale:      v.Scale,
		}
		switch v.Rank() {
		case 0:
			nv.Scalar = scalars[name]
		case 1:
			nv.Vector = vectors[name]
		case 2:
			nv.Matrix = matrices[name]
		}
		result.Variables[name] = nv
	}
	return result, nil
}

func dayMasks(target chrono.DateTime, content []*transform.InstrumentData) ([][]bool, error) {
	start := target.Midnight().Unix()
	end := start + secondsPerDay

	masks := make([][]bool, len(content))
	for i, data := range content {
		epoch, ok := data.Variables["epoch"]
		if !ok {
			return nil, fmt.Errorf("dataset %d: missing epoch variable", i)
		}
		offset, ok := data.Variables["offset"]
		if !ok {
			return nil, fmt.Errorf("dataset %d: missing offset variable", i)
		}
		mask := make([]bool, len(offset.Vector))
		for j, o := range offset.Vector {
			at := epoch.Scalar + o
			mask[j] = start <= at && at < end
		}
		masks[i] = mask
	}
	return masks, nil
}

// mergedDimensions recomputes sizes for the merged dataset. Time tracks
// the merged offset vector and level tracks range; layer and angle keep
// their fixed sizes.
func mergedDimensions(meta *transform.InstrumentData, vectors map[string][]int64) map[string]transform.Dimension {
	dims := make(map[string]transform.Dimension, len(meta.Dimensions))
	for key, d := range meta.Dimensions {
		size := d.Size
		switch key {
		case "time":
			size = len(vectors["offset"])
		case "level":
			size = len(vectors["range"])
		}
		dims[key] = transform.Dimension{Name: d.Name, Size: size}
	}
	return dims
}

func variableDimensions(v *transform.Variable, dims map[string]transform.Dimension) []transform.Dimension {
	if v.Rank() == 0 {
		return nil
	}
	out := make([]transform.Dimension, 0, v.Rank())
	for _, d := range v.Dimensions {
		out = append(out, dims[d.Name.String()])
	}
	return out
}

func timeIndexed(v *transform.Variable) bool {
	return v.Rank() > 0 && v.Dimensions[0].Name == engine.Time
}

func anyTrue(mask []bool) bool {
	for _, b := range mask {
		if b {
			return true
		}
	}
	return false
}

func copyMatrix(m [][]int64) [][]int64 {
	out := make([][]int64, len(m))
	for i, row := range m {
		out[i] = append([]int64(nil), row...)
	}
	return out
}
