package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure of the analysis pipeline
type ErrorKind string

const (
	// KindResourceUnavailable means the recording could not be opened or downloaded
	KindResourceUnavailable ErrorKind = "resource_unavailable"
	// KindMalformedRecord means a CSV record had a bad field or field count
	KindMalformedRecord ErrorKind = "malformed_record"
	// KindInsufficientData means fewer than two samples reached the resampler
	KindInsufficientData ErrorKind = "insufficient_data"
	// KindDegenerateInterval means two consecutive samples share a timestamp
	KindDegenerateInterval ErrorKind = "degenerate_interval"
	// KindEmptySignal means the transform was given a zero-length signal
	KindEmptySignal ErrorKind = "empty_signal"
	// KindInvalidRate means the sample rate is not a positive finite number
	KindInvalidRate ErrorKind = "invalid_rate"
	// KindUnorderedTimestamps means a timestamp is lower than the one before it
	KindUnorderedTimestamps ErrorKind = "unordered_timestamps"
	// KindSignalTooLong means the resampling grid exceeds the configured length
	KindSignalTooLong ErrorKind = "signal_too_long"
	// KindInvalidRequest means the request itself failed validation
	KindInvalidRequest ErrorKind = "invalid_request"
)

// PipelineError is the structured error returned by every pipeline stage.
// Context carries the detail (file path, line, index) that produced it.
type PipelineError struct {
	Kind    ErrorKind
	Context string
	Err     error
}

// NewPipelineError builds a PipelineError with a formatted context
func NewPipelineError(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Context: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

// Unwrap returns the underlying cause
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// KindOf extracts the pipeline error kind from err, looking through wrapping
func KindOf(err error) (ErrorKind, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a PipelineError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
