package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/RMahshie/vibrascope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(n int, c float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = c
	}
	return s
}

func cosine(n int, amplitude float64, cycles int) []float64 {
	s := make([]float64, n)
	for k := range s {
		s[k] = amplitude * math.Cos(2*math.Pi*float64(cycles*k)/float64(n))
	}
	return s
}

func TestTransform_ConstantSignalDCEqualsValue(t *testing.T) {
	for _, tc := range []struct {
		n int
		c float64
	}{
		{n: 1, c: 4},
		{n: 8, c: 3},
		{n: 9, c: -2.5},
		{n: 1024, c: 0.125},
	} {
		bins, err := Transform(constant(tc.n, tc.c))
		require.NoError(t, err)

		assert.InDelta(t, math.Abs(tc.c), cmplx.Abs(bins[0]), 1e-12, "n=%d", tc.n)
		for i := 1; i < len(bins); i++ {
			assert.InDelta(t, 0, cmplx.Abs(bins[i]), 1e-12, "n=%d bin %d", tc.n, i)
		}
	}
}

func TestTransform_BinCount(t *testing.T) {
	for n := 1; n <= 17; n++ {
		bins, err := Transform(constant(n, 1))
		require.NoError(t, err)
		assert.Len(t, bins, n/2+1, "n=%d", n)
	}
}

func TestTransform_NormalizationIsLengthIndependent(t *testing.T) {
	short, err := Transform(cosine(64, 2, 8))
	require.NoError(t, err)
	long, err := Transform(cosine(512, 2, 64))
	require.NoError(t, err)

	// A cosine of amplitude A splits into two conjugate bins of A/2.
	assert.InDelta(t, 1.0, cmplx.Abs(short[8]), 1e-9)
	assert.InDelta(t, 1.0, cmplx.Abs(long[64]), 1e-9)
}

func TestTransform_EmptySignal(t *testing.T) {
	bins, err := Transform(nil)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindEmptySignal))
	assert.Nil(t, bins)
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	in := cosine(16, 1, 3)
	before := append([]float64(nil), in...)

	_, err := Transform(in)
	require.NoError(t, err)
	assert.Equal(t, before, in)
}

func TestProject_FrequencyAxisBounds(t *testing.T) {
	const rate = 1000.0
	for _, n := range []int{2, 7, 8, 255, 256} {
		bins, err := Transform(cosine(n, 1, 1))
		require.NoError(t, err)

		points, err := Project(bins, rate)
		require.NoError(t, err)
		require.Len(t, points, len(bins))

		for i, p := range points {
			assert.GreaterOrEqual(t, p.Frequency, 0.0)
			assert.LessOrEqual(t, p.Frequency, Nyquist(rate))
			assert.GreaterOrEqual(t, p.Magnitude, 0.0)
			if i > 0 {
				assert.GreaterOrEqual(t, p.Frequency, points[i-1].Frequency)
			}
		}
	}
}

// Project reconstructs the signal length as 2*len(bins). These cases pin that
// convention so a change to it is deliberate.
func TestProject_ReconstructedLengthConvention(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		rate      float64
		wantBin1  float64
		exactBin1 float64
	}{
		{name: "even length", n: 8, rate: 8, wantBin1: 8.0 / 10, exactBin1: 1},
		{name: "odd length", n: 7, rate: 7, wantBin1: 7.0 / 8, exactBin1: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins, err := Transform(cosine(tt.n, 1, 1))
			require.NoError(t, err)

			points, err := Project(bins, tt.rate)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantBin1, points[1].Frequency, 1e-12)

			exact, err := ProjectExact(bins, tt.rate, tt.n)
			require.NoError(t, err)
			assert.InDelta(t, tt.exactBin1, exact[1].Frequency, 1e-12)
			assert.NotEqual(t, exact[1].Frequency, points[1].Frequency)
		})
	}
}

func TestProject_Errors(t *testing.T) {
	bins := []complex128{1, 0.5}

	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Project(bins, rate)
		assert.True(t, models.IsKind(err, models.KindInvalidRate), "rate %v", rate)
	}

	_, err := ProjectExact(bins, 10, 8)
	assert.True(t, models.IsKind(err, models.KindInvalidRequest))
}

func TestProject_EmptySpectrum(t *testing.T) {
	points, err := Project([]complex128{}, 100)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestPeak(t *testing.T) {
	bins, err := Transform(cosine(64, 3, 8))
	require.NoError(t, err)
	for i := range bins {
		bins[i] += 5 // large DC offset must not win
	}
	bins[0] = 100

	points, err := ProjectExact(bins, 64, 64)
	require.NoError(t, err)

	peak, ok := Peak(points)
	require.True(t, ok)
	assert.InDelta(t, 8.0, peak.Frequency, 1e-12)

	_, ok = Peak(points[:1])
	assert.False(t, ok)
	_, ok = Peak(nil)
	assert.False(t, ok)
}

func TestPlot(t *testing.T) {
	none := NoPlot()
	assert.False(t, none.Present())
	pts, ok := none.Points()
	assert.False(t, ok)
	assert.Nil(t, pts)

	empty := NewPlot(nil)
	assert.True(t, empty.Present())
	pts, ok = empty.Points()
	assert.True(t, ok)
	assert.NotNil(t, pts)
	assert.Empty(t, pts)

	var zero Plot
	assert.Equal(t, none, zero)
}
