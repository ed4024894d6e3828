package processing

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RMahshie/vibrascope/internal/display"
	"github.com/RMahshie/vibrascope/internal/resample"
	"github.com/RMahshie/vibrascope/internal/spectrum"
	"github.com/RMahshie/vibrascope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vibrationCSV builds a recording of a sine on the X axis with slightly
// irregular timestamps, like a logger that does not sample on a fixed clock.
func vibrationCSV(freqHz, amplitude, duration float64, n int) string {
	var b strings.Builder
	b.WriteString("time,gFx,gFy,gFz\n")
	for i := 0; i < n; i++ {
		t := duration * float64(i) / float64(n-1)
		if i > 0 && i < n-1 {
			t += 0.1 * duration / float64(n-1) * math.Sin(float64(i))
		}
		x := amplitude * math.Sin(2*math.Pi*freqHz*t)
		fmt.Fprintf(&b, "%.9f,%.9f,%.3f,%.3f\n", t, x, 0.01*x, 9.81)
	}
	return b.String()
}

func writeRecording(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPipeline_RunFindsVibrationFrequency(t *testing.T) {
	path := writeRecording(t, vibrationCSV(5, 2, 4, 4000))

	result, err := NewPipeline().Run(Request{Path: path, SampleRateHz: 64})
	require.NoError(t, err)

	assert.Equal(t, 4000, result.SampleCount)
	assert.Equal(t, resample.NominalLength(0, 4, 64), result.SignalLength)
	assert.Len(t, result.Points, result.SignalLength/2+1)
	require.True(t, result.HasPeak)
	assert.InDelta(t, 5.0, result.Peak.Frequency, 0.25)
	// A sine of amplitude A puts A/2 in its one-sided bin.
	assert.InDelta(t, 1.0, result.Peak.Magnitude, 0.1)

	for _, p := range result.Points {
		assert.LessOrEqual(t, p.Frequency, spectrum.Nyquist(64))
	}
}

func TestPipeline_ExactFrequencyAxis(t *testing.T) {
	csv := vibrationCSV(8, 1, 2, 2000)

	approx, err := NewPipeline().RunReader(strings.NewReader(csv), 64)
	require.NoError(t, err)
	exact, err := NewPipeline(WithExactFrequencyAxis(true)).RunReader(strings.NewReader(csv), 64)
	require.NoError(t, err)

	require.Equal(t, len(approx.Points), len(exact.Points))
	last := len(exact.Points) - 1
	assert.Greater(t, exact.Points[last].Frequency, approx.Points[last].Frequency)
	assert.InDelta(t, 8.0, exact.Peak.Frequency, 0.1)
}

func TestPipeline_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		rate     float64
		opts     []PipelineOption
		wantKind models.ErrorKind
	}{
		{
			name:     "header only",
			content:  "time,gFx,gFy,gFz\n",
			rate:     100,
			wantKind: models.KindInsufficientData,
		},
		{
			name:     "single sample",
			content:  "time,gFx,gFy,gFz\n0,1,1,1\n",
			rate:     100,
			wantKind: models.KindInsufficientData,
		},
		{
			name:     "non numeric record",
			content:  "time,gFx,gFy,gFz\n0,1,1,1\n0.1,x,1,1\n",
			rate:     100,
			wantKind: models.KindMalformedRecord,
		},
		{
			name:     "unordered timestamps",
			content:  "time,gFx,gFy,gFz\n0,1,1,1\n0.2,1,1,1\n0.1,1,1,1\n",
			rate:     100,
			wantKind: models.KindUnorderedTimestamps,
		},
		{
			name:     "duplicate timestamps rejected",
			content:  "time,gFx,gFy,gFz\n0,1,1,1\n0,2,1,1\n0.1,1,1,1\n",
			rate:     100,
			opts:     []PipelineOption{WithDuplicatePolicy(resample.RejectDuplicates)},
			wantKind: models.KindDegenerateInterval,
		},
		{
			name:     "epoch milliseconds overflow the grid",
			content:  "time,gFx,gFy,gFz\n0,1,1,1\n1700000000000,1,1,1\n",
			rate:     100,
			wantKind: models.KindSignalTooLong,
		},
		{
			name:     "signal above configured length",
			content:  "time,gFx,gFy,gFz\n0,1,1,1\n1,1,1,1\n",
			rate:     100,
			opts:     []PipelineOption{WithMaxSignalLength(10)},
			wantKind: models.KindSignalTooLong,
		},
		{
			name:     "zero rate",
			content:  "time,gFx,gFy,gFz\n0,1,1,1\n1,1,1,1\n",
			rate:     0,
			wantKind: models.KindInvalidRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewPipeline(tt.opts...).RunReader(strings.NewReader(tt.content), tt.rate)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, models.IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestPipeline_DuplicateTimestampsPassThroughByDefault(t *testing.T) {
	result, err := NewPipeline().RunReader(strings.NewReader("time,gFx,gFy,gFz\n0,1,1,1\n0,2,1,1\n1,1,1,1\n"), 4)
	require.NoError(t, err)
	assert.Equal(t, 5, result.SignalLength)
}

func TestPipeline_RunMissingFile(t *testing.T) {
	_, err := NewPipeline().Run(Request{Path: filepath.Join(t.TempDir(), "nope.csv"), SampleRateHz: 10})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindResourceUnavailable))
}

func TestRequest_Validate(t *testing.T) {
	limits := Limits{MaxSampleRateHz: 99999, MaxPathLength: 360}

	tests := []struct {
		name     string
		req      Request
		wantKind models.ErrorKind
	}{
		{name: "valid", req: Request{Path: "a.csv", SampleRateHz: 1000}},
		{name: "rate at limit", req: Request{Path: "a.csv", SampleRateHz: 99999}},
		{name: "rate above limit", req: Request{Path: "a.csv", SampleRateHz: 100000}, wantKind: models.KindInvalidRate},
		{name: "nan rate", req: Request{Path: "a.csv", SampleRateHz: math.NaN()}, wantKind: models.KindInvalidRate},
		{name: "negative rate", req: Request{Path: "a.csv", SampleRateHz: -1}, wantKind: models.KindInvalidRate},
		{name: "empty path", req: Request{SampleRateHz: 10}, wantKind: models.KindInvalidRequest},
		{name: "path too long", req: Request{Path: strings.Repeat("p", 361), SampleRateHz: 10}, wantKind: models.KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(limits)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, models.IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestPipeline_Present(t *testing.T) {
	board := display.NewBoard()
	p := NewPipeline()

	good := writeRecording(t, vibrationCSV(4, 1, 2, 500))
	result, err := p.Present(Request{Path: good, SampleRateHz: 32}, board)
	require.NoError(t, err)

	pts, ok := board.Current().Points()
	require.True(t, ok)
	assert.Equal(t, result.Points, pts)

	bad := writeRecording(t, "time,gFx,gFy,gFz\n")
	_, err = p.Present(Request{Path: bad, SampleRateHz: 32}, board)
	require.Error(t, err)
	assert.False(t, board.Current().Present(), "a failed run leaves the display cleared")
}

func TestResult_Body(t *testing.T) {
	r := &Result{
		SampleCount:  10,
		SignalLength: 8,
		SampleRateHz: 16,
		Points:       []models.FrequencyPoint{{Frequency: 0, Magnitude: 1}},
		Peak:         models.FrequencyPoint{Frequency: 2, Magnitude: 0.5},
		HasPeak:      true,
	}
	body := r.Body()
	assert.Equal(t, 10, body.SampleCount)
	assert.Equal(t, 2.0, body.PeakFrequency)
	assert.Equal(t, r.Points, body.FrequencyData)
}
