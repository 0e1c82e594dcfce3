package colortable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	a := Default()
	assert.Equal(t, 1, a.Version)
	assert.Equal(t, []int{2, 4, 256}, a.Sizes())

	for _, size := range a.Sizes() {
		tbl, err := a.Table(size)
		require.NoError(t, err)
		require.Len(t, tbl, size)
		for i, c := range tbl {
			for _, v := range []float64{c.R, c.G, c.B} {
				assert.True(t, v >= 0 && v <= 1, "table %d entry %d channel %v", size, i, v)
			}
		}
	}
}

func TestMissingTable(t *testing.T) {
	_, err := Default().Table(512)
	assert.ErrorIs(t, err, ErrNoTable)
	assert.Contains(t, err.Error(), "512")
}

func TestLookup(t *testing.T) {
	tbl, err := Default().Table(256)
	require.NoError(t, err)

	c, err := tbl.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.9, 0.07176, 0.23217}, [3]float64{c.R, c.G, c.B})

	c, err = tbl.Lookup(165)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.96049, 0.77181, 0.22811}, [3]float64{c.R, c.G, c.B})

	c, err = tbl.Lookup(tbl.Quantize(128))
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.64362, 0.98999, 0.23356}, [3]float64{c.R, c.G, c.B})

	_, err = tbl.Lookup(256)
	assert.Error(t, err)
	_, err = tbl.Lookup(-1)
	assert.Error(t, err)
}

func TestSmallTables(t *testing.T) {
	two, err := Default().Table(2)
	require.NoError(t, err)
	four, err := Default().Table(4)
	require.NoError(t, err)

	assert.Equal(t, two[0], four[0])
	assert.Equal(t, two[1], four[1])
	assert.Equal(t, 0.31844, four[3].B)
}

func TestQuantize(t *testing.T) {
	tbl := make(Table, 4)
	assert.Equal(t, 0, tbl.Quantize(0))
	assert.Equal(t, 1, tbl.Quantize(64))
	assert.Equal(t, 2, tbl.Quantize(128))
	assert.Equal(t, 3, tbl.Quantize(255))

	big := make(Table, 256)
	for m := 0; m < 256; m++ {
		assert.Equal(t, m, big.Quantize(uint8(m)))
	}
}

func TestFloats(t *testing.T) {
	tbl, err := Default().Table(2)
	require.NoError(t, err)
	f := tbl.Floats()
	require.Len(t, f, 6)
	assert.InDelta(t, 0.18995, f[0], 1e-6)
	assert.InDelta(t, 0.26149, f[5], 1e-6)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte(`{"version":1,"tables":{"2":[[0,0,0]]}}`))
	assert.Error(t, err)
	_, err = Parse([]byte(`{"version":1,"tables":{"1":[[0,1.5,0]]}}`))
	assert.Error(t, err)
	_, err = Parse([]byte(`{"version":1,"tables":{"x":[]}}`))
	assert.Error(t, err)
	_, err = Parse([]byte(`nope`))
	assert.Error(t, err)
}
