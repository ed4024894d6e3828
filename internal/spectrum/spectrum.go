// Package spectrum computes the amplitude-normalized one-sided spectrum of
// a uniformly sampled real signal and projects it onto a frequency axis.
package spectrum

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/RMahshie/vibrascope/pkg/models"
)

// Transform returns the floor(N/2)+1 non-redundant bins of the forward real
// FFT of signal, each divided by N so a bin's magnitude does not depend on
// the signal length.
func Transform(signal []float64) ([]complex128, error) {
	n := len(signal)
	if n == 0 {
		return nil, models.NewPipelineError(models.KindEmptySignal, nil, "transform of zero-length signal")
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, signal)

	scale := complex(1/float64(n), 0)
	for i := range coeffs {
		coeffs[i] *= scale
	}
	return coeffs, nil
}

// Project maps bin i to frequency i*sampleRateHz/(2*len(bins)).
//
// The signal length is reconstructed from the one-sided bin count rather
// than passed in. 2*len(bins) is N+2 for even N and N+1 for odd N, so every
// frequency is slightly compressed towards DC. Use ProjectExact when the
// signal length is known.
func Project(bins []complex128, sampleRateHz float64) ([]models.FrequencyPoint, error) {
	return project(bins, sampleRateHz, 2*len(bins))
}

// ProjectExact maps bin i to frequency i*sampleRateHz/n, where n is the
// length of the transformed signal.
func ProjectExact(bins []complex128, sampleRateHz float64, n int) ([]models.FrequencyPoint, error) {
	if n <= 0 || n/2+1 != len(bins) {
		return nil, models.NewPipelineError(models.KindInvalidRequest, nil, "%d bins cannot come from a signal of length %d", len(bins), n)
	}
	return project(bins, sampleRateHz, n)
}

func project(bins []complex128, sampleRateHz float64, n int) ([]models.FrequencyPoint, error) {
	if math.IsNaN(sampleRateHz) || math.IsInf(sampleRateHz, 0) || sampleRateHz <= 0 {
		return nil, models.NewPipelineError(models.KindInvalidRate, nil, "projection rate %v Hz", sampleRateHz)
	}

	points := make([]models.FrequencyPoint, len(bins))
	for i, c := range bins {
		points[i] = models.FrequencyPoint{
			Frequency: float64(i) * sampleRateHz / float64(n),
			Magnitude: cmplx.Abs(c),
		}
	}
	return points, nil
}

// Nyquist is half the sampling rate
func Nyquist(sampleRateHz float64) float64 {
	return sampleRateHz / 2
}

// Peak returns the strongest bin above DC. ok is false when there is none.
func Peak(points []models.FrequencyPoint) (peak models.FrequencyPoint, ok bool) {
	for _, p := range points[min(1, len(points)):] {
		if !ok || p.Magnitude > peak.Magnitude {
			peak, ok = p, true
		}
	}
	return peak, ok
}
