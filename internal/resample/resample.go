// Package resample converts irregularly timestamped samples into a
// uniformly spaced signal by linear interpolation.
package resample

import (
	"fmt"
	"math"
	"strings"

	"github.com/RMahshie/vibrascope/pkg/models"
)

// DuplicatePolicy decides what happens when two consecutive samples share a timestamp
type DuplicatePolicy int

const (
	// PassThrough emits the left sample's value for a zero-width interval
	PassThrough DuplicatePolicy = iota
	// RejectDuplicates fails with KindDegenerateInterval before resampling
	RejectDuplicates
)

func (p DuplicatePolicy) String() string {
	switch p {
	case PassThrough:
		return "passthrough"
	case RejectDuplicates:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy maps a config value to a DuplicatePolicy
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "passthrough":
		return PassThrough, nil
	case "reject":
		return RejectDuplicates, nil
	default:
		return PassThrough, fmt.Errorf("unknown duplicate timestamp policy %q", s)
	}
}

// DefaultMaxSignalLength bounds the resampled signal when Resampler.MaxLength is zero
const DefaultMaxSignalLength = 1 << 24

// Resampler interpolates the X axis of a sample sequence onto a uniform grid
type Resampler struct {
	Duplicates DuplicatePolicy
	// MaxLength caps the grid size; zero means DefaultMaxSignalLength
	MaxLength int
}

// Resample uses the default PassThrough policy
func Resample(samples []models.Sample, rateHz float64) ([]float64, error) {
	return Resampler{}.Resample(samples, rateHz)
}

// Resample returns values at t = start + k/rateHz for k below NominalLength
// and t up to the last timestamp. Steps without a bracketing interval are
// skipped rather than extrapolated, so the result can be shorter than
// NominalLength but never longer.
func (r Resampler) Resample(samples []models.Sample, rateHz float64) ([]float64, error) {
	return r.resample(samples, rateHz, nil)
}

// resample calls trace with the cursor position before every emitted or skipped step.
func (r Resampler) resample(samples []models.Sample, rateHz float64, trace func(j int)) ([]float64, error) {
	if math.IsNaN(rateHz) || math.IsInf(rateHz, 0) || rateHz <= 0 {
		return nil, models.NewPipelineError(models.KindInvalidRate, nil, "resample rate %v Hz", rateHz)
	}
	if len(samples) == 0 {
		return []float64{}, nil
	}
	if err := r.validate(samples); err != nil {
		return nil, err
	}

	start := samples[0].Time
	end := samples[len(samples)-1].Time
	dt := 1.0 / rateHz
	if math.IsInf(dt, 0) {
		return nil, models.NewPipelineError(models.KindInvalidRate, nil, "resample rate %v Hz", rateHz)
	}

	n, err := r.gridSize(start, end, rateHz)
	if err != nil {
		return nil, err
	}
	result := make([]float64, 0, n)

	j := 0
	for k := 0; k < n; k++ {
		t := start + float64(k)*dt
		if t > end {
			break
		}

		for j+1 < len(samples) && samples[j+1].Time < t {
			j++
		}
		if trace != nil {
			trace(j)
		}

		if j+1 >= len(samples) {
			continue
		}

		t0, t1 := samples[j].Time, samples[j+1].Time
		v0 := samples[j].Value(models.AxisX)
		v1 := samples[j+1].Value(models.AxisX)

		if t1 == t0 {
			result = append(result, v0)
			continue
		}
		result = append(result, v0+(v1-v0)*(t-t0)/(t1-t0))
	}

	return result, nil
}

func (r Resampler) validate(samples []models.Sample) error {
	for i := range samples {
		cur := samples[i].Time
		if math.IsNaN(cur) || math.IsInf(cur, 0) {
			return models.NewPipelineError(models.KindUnorderedTimestamps, nil, "sample %d has timestamp %v", i, cur)
		}
		if i == 0 {
			continue
		}
		prev := samples[i-1].Time
		if cur < prev {
			return models.NewPipelineError(models.KindUnorderedTimestamps, nil, "sample %d at %v precedes sample %d at %v", i, cur, i-1, prev)
		}
		if cur == prev && r.Duplicates == RejectDuplicates {
			return models.NewPipelineError(models.KindDegenerateInterval, nil, "samples %d and %d share timestamp %v", i-1, i, cur)
		}
	}
	return nil
}

func (r Resampler) maxLength() int {
	if r.MaxLength > 0 {
		return r.MaxLength
	}
	return DefaultMaxSignalLength
}

// gridSize returns NominalLength, or KindSignalTooLong when it exceeds the
// resampler's limit.
func (r Resampler) gridSize(start, end, rateHz float64) (int, error) {
	steps := nominalSteps(start, end, rateHz)
	limit := r.maxLength()
	if !(steps <= float64(limit)) || steps >= float64(math.MaxInt) {
		return 0, models.NewPipelineError(models.KindSignalTooLong, nil,
			"%v s at %v Hz needs %.0f values, limit is %d", end-start, rateHz, steps, limit)
	}
	return int(steps), nil
}

// nominalSteps is floor((end-start)/dt)+1 in float64 so that huge spans
// stay comparable instead of wrapping.
func nominalSteps(start, end, rateHz float64) float64 {
	if end < start || rateHz <= 0 {
		return 0
	}
	return math.Floor((end-start)/(1.0/rateHz)) + 1
}

// NominalLength is floor((end-start)/dt)+1 with dt = 1/rateHz, the grid
// size before tail truncation. It saturates at math.MaxInt.
func NominalLength(start, end, rateHz float64) int {
	steps := nominalSteps(start, end, rateHz)
	if !(steps < float64(math.MaxInt)) {
		return math.MaxInt
	}
	return int(steps)
}
