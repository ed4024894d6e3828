package processing

import (
	"io"
	"math"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/vibrascope/internal/display"
	"github.com/RMahshie/vibrascope/internal/resample"
	"github.com/RMahshie/vibrascope/internal/samples"
	"github.com/RMahshie/vibrascope/internal/spectrum"
	"github.com/RMahshie/vibrascope/pkg/models"
)

// Request is one analysis of a local recording
type Request struct {
	Path         string
	SampleRateHz float64
}

// Limits bounds what a Request may ask for. Zero fields are not checked.
type Limits struct {
	MaxSampleRateHz float64
	MaxPathLength   int
}

// Validate checks the request against the limits
func (r Request) Validate(limits Limits) error {
	if math.IsNaN(r.SampleRateHz) || math.IsInf(r.SampleRateHz, 0) || r.SampleRateHz <= 0 {
		return models.NewPipelineError(models.KindInvalidRate, nil, "sample rate %v Hz", r.SampleRateHz)
	}
	if limits.MaxSampleRateHz > 0 && r.SampleRateHz > limits.MaxSampleRateHz {
		return models.NewPipelineError(models.KindInvalidRate, nil, "sample rate %v Hz exceeds %v Hz", r.SampleRateHz, limits.MaxSampleRateHz)
	}
	if r.Path == "" {
		return models.NewPipelineError(models.KindInvalidRequest, nil, "empty path")
	}
	if limits.MaxPathLength > 0 && utf8.RuneCountInString(r.Path) > limits.MaxPathLength {
		return models.NewPipelineError(models.KindInvalidRequest, nil, "path is longer than %d characters", limits.MaxPathLength)
	}
	return nil
}

// Result is the outcome of one pipeline run
type Result struct {
	SampleCount  int
	SignalLength int
	SampleRateHz float64
	Points       []models.FrequencyPoint
	Peak         models.FrequencyPoint
	HasPeak      bool
}

// Body converts the result to its API representation
func (r *Result) Body() models.SpectrumBody {
	return models.SpectrumBody{
		SampleCount:   r.SampleCount,
		SignalLength:  r.SignalLength,
		SampleRateHz:  r.SampleRateHz,
		PeakFrequency: r.Peak.Frequency,
		PeakMagnitude: r.Peak.Magnitude,
		FrequencyData: r.Points,
	}
}

// Pipeline runs load → resample → transform → project
type Pipeline struct {
	resampler resample.Resampler
	limits    Limits
	exactAxis bool
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithDuplicatePolicy sets how duplicate timestamps are resampled
func WithDuplicatePolicy(policy resample.DuplicatePolicy) PipelineOption {
	return func(p *Pipeline) {
		p.resampler.Duplicates = policy
	}
}

// WithMaxSignalLength caps the number of resampled values, zero keeps the default
func WithMaxSignalLength(n int) PipelineOption {
	return func(p *Pipeline) {
		p.resampler.MaxLength = n
	}
}

// WithLimits sets the request limits checked by Run and Present
func WithLimits(limits Limits) PipelineOption {
	return func(p *Pipeline) {
		p.limits = limits
	}
}

// WithExactFrequencyAxis projects with the true signal length instead of
// reconstructing it from the bin count
func WithExactFrequencyAxis(exact bool) PipelineOption {
	return func(p *Pipeline) {
		p.exactAxis = exact
	}
}

// NewPipeline creates a pipeline
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run analyzes the recording at req.Path
func (p *Pipeline) Run(req Request) (*Result, error) {
	if err := req.Validate(p.limits); err != nil {
		return nil, err
	}

	data, err := samples.Load(req.Path)
	if err != nil {
		return nil, err
	}
	return p.Analyze(data, req.SampleRateHz)
}

// RunReader analyzes a recording read from r
func (p *Pipeline) RunReader(r io.Reader, rateHz float64) (*Result, error) {
	data, err := samples.Read(r)
	if err != nil {
		return nil, err
	}
	return p.Analyze(data, rateHz)
}

// Analyze runs the numeric stages on already loaded samples
func (p *Pipeline) Analyze(data []models.Sample, rateHz float64) (*Result, error) {
	if len(data) < 2 {
		return nil, models.NewPipelineError(models.KindInsufficientData, nil, "%d samples, need at least 2", len(data))
	}

	signal, err := p.resampler.Resample(data, rateHz)
	if err != nil {
		return nil, err
	}
	if len(signal) == 0 {
		return nil, models.NewPipelineError(models.KindInsufficientData, nil, "resampling %d samples at %v Hz produced no values", len(data), rateHz)
	}

	bins, err := spectrum.Transform(signal)
	if err != nil {
		return nil, err
	}

	var points []models.FrequencyPoint
	if p.exactAxis {
		points, err = spectrum.ProjectExact(bins, rateHz, len(signal))
	} else {
		points, err = spectrum.Project(bins, rateHz)
	}
	if err != nil {
		return nil, err
	}

	peak, hasPeak := spectrum.Peak(points)

	log.Debug().
		Int("samples", len(data)).
		Int("signalLength", len(signal)).
		Int("bins", len(bins)).
		Float64("rateHz", rateHz).
		Msg("Spectrum computed")

	return &Result{
		SampleCount:  len(data),
		SignalLength: len(signal),
		SampleRateHz: rateHz,
		Points:       points,
		Peak:         peak,
		HasPeak:      hasPeak,
	}, nil
}

// Present clears d, runs req and shows the projected spectrum. On failure
// d is left cleared.
func (p *Pipeline) Present(req Request, d display.Display) (*Result, error) {
	d.Clear()

	result, err := p.Run(req)
	if err != nil {
		return nil, err
	}
	if err := d.Show(spectrum.NewPlot(result.Points)); err != nil {
		return nil, err
	}
	return result, nil
}
