// SPDX-License-Identifier: MIT

package ncdf

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/google/renameio/v2"
)

// maxHeaderLen bounds the JSON header so a corrupt length field cannot
// demand a multi-gigabyte allocation.
const maxHeaderLen = 16 << 20

type header struct {
	Attrs      map[string]string `json:"attrs,omitempty"`
	Dimensions map[string]int    `json:"dimensions"`
	Arrays     map[string]*Array `json:"arrays"`
	Order      []string          `json:"order"`
}

// WriteTo streams the container: magic, header length, JSON header,
// then each array's elements little-endian in header order.
func (f *File) WriteTo(w io.Writer) error {
	head := header{
		Attrs:      f.Attrs,
		Dimensions: f.Dimensions,
		Arrays:     f.Arrays,
		Order:      f.names(),
	}
	raw, err := json.Marshal(head)
	if err != nil {
		return fmt.Errorf("ncdf: marshal header: %w", err)
	}
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(raw))); err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	for _, name := range head.Order {
		if err := writeArray(w, f.Arrays[name]); err != nil {
			return fmt.Errorf("ncdf: write %q: %w", name, err)
		}
	}
	return nil
}

// Save writes the container to path atomically.
func (f *File) Save(path string) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("ncdf: pending file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck // cleanup after commit is a no-op

	bw := bufio.NewWriter(pending)
	if err := f.WriteTo(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("ncdf: replace %s: %w", path, err)
	}
	return nil
}

// Read parses a container from r.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("ncdf: read magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, ErrNotContainer
	}
	var headLen uint32
	if err := binary.Read(br, binary.LittleEndian, &headLen); err != nil {
		return nil, fmt.Errorf("ncdf: read header length: %w", err)
	}
	if headLen > maxHeaderLen {
		return nil, fmt.Errorf("ncdf: header length %d exceeds limit %d", headLen, maxHeaderLen)
	}
	raw := make([]byte, headLen)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, fmt.Errorf("ncdf: read header: %w", err)
	}
	var head header
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("ncdf: parse header: %w", err)
	}

	f := New()
	if head.Attrs != nil {
		f.Attrs = head.Attrs
	}
	f.Dimensions = head.Dimensions
	for _, name := range head.Order {
		a, ok := head.Arrays[name]
		if !ok {
			return nil, fmt.Errorf("ncdf: header order names unknown array %q", name)
		}
		if !a.Kind.valid() {
			return nil, fmt.Errorf("ncdf: array %q: unknown kind %q", name, a.Kind)
		}
		if err := readArray(br, f, a); err != nil {
			return nil, fmt.Errorf("ncdf: read %q: %w", name, err)
		}
		f.Arrays[name] = a
	}
	return f, nil
}

// Open reads a container from disk.
func Open(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close() //nolint:errcheck // read-only handle
	return Read(fh)
}

func writeArray(w io.Writer, a *Array) error {
	switch a.Rank() {
	case 0:
		return writeElem(w, a.Kind, a.Scalar)
	case 1:
		for _, v := range a.Vector {
			if err := writeElem(w, a.Kind, v); err != nil {
				return err
			}
		}
	default:
		for _, row := range a.Matrix {
			for _, v := range row {
				if err := writeElem(w, a.Kind, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func readArray(r io.Reader, f *File, a *Array) error {
	switch a.Rank() {
	case 0:
		v, err := readElem(r, a.Kind)
		if err != nil {
			return err
		}
		a.Scalar = v
	case 1:
		size, ok := f.Dimensions[a.Dims[0]]
		if !ok {
			return fmt.Errorf("undefined dimension %q", a.Dims[0])
		}
		a.Vector = make([]float64, size)
		for i := range a.Vector {
			v, err := readElem(r, a.Kind)
			if err != nil {
				return err
			}
			a.Vector[i] = v
		}
	case 2:
		rows, ok := f.Dimensions[a.Dims[0]]
		if !ok {
			return fmt.Errorf("undefined dimension %q", a.Dims[0])
		}
		cols, ok := f.Dimensions[a.Dims[1]]
		if !ok {
			return fmt.Errorf("undefined dimension %q", a.Dims[1])
		}
		a.Matrix = make([][]float64, rows)
		for i := range a.Matrix {
			a.Matrix[i] = make([]float64, cols)
			for j := range a.Matrix[i] {
				v, err := readElem(r, a.Kind)
				if err != nil {
					return err
				}
				a.Matrix[i][j] = v
			}
		}
	default:
		return fmt.Errorf("rank %d not supported", a.Rank())
	}
	return nil
}

func writeElem(w io.Writer, k Kind, v float64) error {
	var buf [8]byte
	switch k {
	case I1:
		buf[0] = byte(int8(v))
	case U1:
		buf[0] = byte(uint8(v))
	case I2:
		binary.LittleEndian.PutUint16(buf[:2], uint16(int16(v)))
	case U2:
		binary.LittleEndian.PutUint16(buf[:2], uint16(v))
	case I4:
		binary.LittleEndian.PutUint32(buf[:4], uint32(int32(v)))
	case U4:
		binary.LittleEndian.PutUint32(buf[:4], uint32(v))
	case F4:
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(float32(v)))
	case F8:
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(v))
	}
	_, err := w.Write(buf[:elemSize[k]])
	return err
}

func readElem(r io.Reader, k Kind) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:elemSize[k]]); err != nil {
		return 0, err
	}
	switch k {
	case I1:
		return float64(int8(buf[0])), nil
	case U1:
		return float64(buf[0]), nil
	case I2:
		return float64(int16(binary.LittleEndian.Uint16(buf[:2]))), nil
	case U2:
		return float64(binary.LittleEndian.Uint16(buf[:2])), nil
	case I4:
		return float64(int32(binary.LittleEndian.Uint32(buf[:4]))), nil
	case U4:
		return float64(binary.LittleEndian.Uint32(buf[:4])), nil
	case F4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:4]))), nil
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf[:8])), nil
	}
}
