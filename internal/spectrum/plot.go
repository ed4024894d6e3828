package spectrum

import "github.com/RMahshie/vibrascope/pkg/models"

// Plot is either no spectrum at all or a projected spectrum, which may be
// empty. The zero value is NoPlot.
type Plot struct {
	points  []models.FrequencyPoint
	present bool
}

// NoPlot is the cleared state
func NoPlot() Plot {
	return Plot{}
}

// NewPlot wraps projected points; nil is stored as an empty spectrum
func NewPlot(points []models.FrequencyPoint) Plot {
	if points == nil {
		points = []models.FrequencyPoint{}
	}
	return Plot{points: points, present: true}
}

// Present reports whether the plot holds a spectrum
func (p Plot) Present() bool {
	return p.present
}

// Points returns the projected spectrum and whether there is one
func (p Plot) Points() ([]models.FrequencyPoint, bool) {
	return p.points, p.present
}
