// Package colortable holds the per-bin base colors used by the mesh shader, keyed by the
// number of frequency bins they cover.
package colortable

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

//go:embed tables.json
var tablesJSON []byte

// ErrNoTable is returned when the asset has no table for a size.
var ErrNoTable = errors.New("no color table for size")

// Table is an ordered list of colors, one per frequency bin.
type Table []colorful.Color

// Lookup returns the color for bin i.
func (t Table) Lookup(i int) (colorful.Color, error) {
	if i < 0 || i >= len(t) {
		return colorful.Color{}, fmt.Errorf("color index %d out of range [0, %d)", i, len(t))
	}
	return t[i], nil
}

// Quantize maps a magnitude byte onto an index into the table.
func (t Table) Quantize(m uint8) int {
	return int(m) * len(t) / 256
}

// Floats flattens the table into RGB triplets for upload as a vec3 array.
func (t Table) Floats() []float32 {
	out := make([]float32, 0, 3*len(t))
	for _, c := range t {
		out = append(out, float32(c.R), float32(c.G), float32(c.B))
	}
	return out
}

// Asset is a versioned set of tables.
type Asset struct {
	Version int
	tables  map[int]Table
}

type assetJSON struct {
	Version int                     `json:"version"`
	Tables  map[string][][3]float64 `json:"tables"`
}

// Parse decodes an asset and checks that each table has as many entries as its key and
// that every channel lies in [0, 1].
func Parse(data []byte) (*Asset, error) {
	var raw assetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse color tables: %w", err)
	}
	a := &Asset{Version: raw.Version, tables: make(map[int]Table, len(raw.Tables))}
	for key, rows := range raw.Tables {
		size, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid table size %q: %w", key, err)
		}
		if len(rows) != size {
			return nil, fmt.Errorf("table %d has %d entries", size, len(rows))
		}
		t := make(Table, size)
		for i, rgb := range rows {
			for _, v := range rgb {
				if v < 0 || v > 1 {
					return nil, fmt.Errorf("table %d entry %d: channel %v outside [0, 1]", size, i, v)
				}
			}
			t[i] = colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		}
		a.tables[size] = t
	}
	return a, nil
}

var (
	defaultOnce  sync.Once
	defaultAsset *Asset
)

// Default returns the embedded asset, parsed once.
func Default() *Asset {
	defaultOnce.Do(func() {
		a, err := Parse(tablesJSON)
		if err != nil {
			panic(err)
		}
		defaultAsset = a
	})
	return defaultAsset
}

// Table returns the table for size. The returned table must not be modified.
func (a *Asset) Table(size int) (Table, error) {
	t, ok := a.tables[size]
	if !ok {
		return nil, fmt.Errorf("%w %d (have %v)", ErrNoTable, size, a.Sizes())
	}
	return t, nil
}

// Sizes lists the available table sizes in increasing order.
func (a *Asset) Sizes() []int {
	sizes := make([]int, 0, len(a.tables))
	for s := range a.tables {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}
