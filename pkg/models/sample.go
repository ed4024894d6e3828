package models

// Axis indexes one channel of a triaxial reading
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Sample represents one timestamped triaxial acceleration reading
type Sample struct {
	Time float64    `json:"time" doc:"Timestamp in seconds"`
	Axes [3]float64 `json:"axes" doc:"Acceleration on X, Y and Z"`
}

// Value returns the reading on the given axis
func (s Sample) Value(axis Axis) float64 {
	return s.Axes[axis]
}
