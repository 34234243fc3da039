package scoring

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToTen_Range(t *testing.T) {
	in := []float64{-12.5, 0, 3.7, 99, 1e6, -1e6}
	out := NormalizeToTen(in, false)

	require.Len(t, out, len(in))
	for i, v := range out {
		assert.GreaterOrEqual(t, v, 0.0, "index %d", i)
		assert.LessOrEqual(t, v, 10.0, "index %d", i)
	}
}

func TestNormalizeToTen_Empty(t *testing.T) {
	assert.Empty(t, NormalizeToTen(nil, false))
	assert.Empty(t, NormalizeToTen([]float64{}, true))
}

func TestNormalizeToTen_ConstantColumn(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
	}{
		{"all zero", []float64{0, 0, 0}},
		{"all equal positive", []float64{42.5, 42.5, 42.5, 42.5}},
		{"all equal negative", []float64{-3, -3}},
		{"single value", []float64{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NormalizeToTen(tt.in, false)
			require.Len(t, out, len(tt.in))
			for _, v := range out {
				assert.Equal(t, 5.0, v)
			}
		})
	}
}

func TestNormalizeToTen_LinearEndpoints(t *testing.T) {
	out := NormalizeToTen([]float64{10, 20, 30}, false)
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 5.0, out[1], 1e-9)
	assert.InDelta(t, 10.0, out[2], 1e-9)
}

func TestNormalizeToTen_InvertReversesRanking(t *testing.T) {
	in := []float64{1, 4, 2, 9, 7}
	normal := NormalizeToTen(in, false)
	inverted := NormalizeToTen(in, true)

	// Sorting by the original values must produce a strictly decreasing
	// inverted score sequence.
	idx := make([]int, len(in))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return in[idx[a]] < in[idx[b]] })

	for k := 1; k < len(idx); k++ {
		assert.Greater(t, inverted[idx[k-1]], inverted[idx[k]])
		assert.Less(t, normal[idx[k-1]], normal[idx[k]])
	}
}

func TestNormalizeToTen_NonFiniteTreatedAsZero(t *testing.T) {
	out := NormalizeToTen([]float64{math.NaN(), math.Inf(1), math.Inf(-1), 10}, false)

	require.Len(t, out, 4)
	// NaN and both infinities collapse to 0, so the range is [0, 10].
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 0.0, out[1], 1e-9)
	assert.InDelta(t, 0.0, out[2], 1e-9)
	assert.InDelta(t, 10.0, out[3], 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 1))
	assert.Equal(t, 1.0, Clamp(5, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}
