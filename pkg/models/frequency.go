package models

// FrequencyPoint represents a single bin of a projected spectrum
type FrequencyPoint struct {
	Frequency float64 `json:"frequency" doc:"Frequency in Hz"`
	Magnitude float64 `json:"magnitude" doc:"Amplitude-normalized magnitude in mm/s²"`
}
