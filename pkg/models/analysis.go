package models

import (
	"time"
)

// Analysis statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateAnalysisRequestBody is the body of a create analysis request
type CreateAnalysisRequestBody struct {
	SessionID    string  `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
	FileSize     int64   `json:"file_size" minimum:"1" required:"true" doc:"Recording size in bytes"`
	SampleRateHz float64 `json:"sample_rate_hz" exclusiveMinimum:"0" maximum:"99999" required:"true" doc:"Uniform resampling rate in Hz"`
	MimeType     string  `json:"mime_type" enum:"text/csv,application/csv,text/plain" required:"true" doc:"Recording MIME type"`
}

// CreateAnalysisRequest represents a request to create a new analysis
type CreateAnalysisRequest struct {
	Body CreateAnalysisRequestBody
}

// CreateAnalysisResponseBody is the body of the create analysis response
type CreateAnalysisResponseBody struct {
	ID        string `json:"id" doc:"Analysis unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed URL for the CSV upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateAnalysisResponse represents the response from creating an analysis
type CreateAnalysisResponse struct {
	Body CreateAnalysisResponseBody
}

// GetAnalysisStatusRequest represents a request to get analysis status
type GetAnalysisStatusRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetAnalysisStatusResponseBody is the body of the status response
type GetAnalysisStatusResponseBody struct {
	ID        string  `json:"id" doc:"Analysis ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Analysis status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Analysis progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when analysis completes"`
	Error     *string `json:"error,omitempty" doc:"Failure reason when the analysis failed"`
}

// GetAnalysisStatusResponse represents the current status of an analysis
type GetAnalysisStatusResponse struct {
	Body GetAnalysisStatusResponseBody
}

// ListSessionAnalysesRequest represents a request for the analyses of one session
type ListSessionAnalysesRequest struct {
	SessionID string `path:"sessionID" minLength:"10" maxLength:"50" doc:"Client session identifier"`
}

// ListSessionAnalysesResponse lists the analyses of a session, newest first
type ListSessionAnalysesResponse struct {
	Body struct {
		Analyses []GetAnalysisStatusResponseBody `json:"analyses" doc:"Analyses of the session"`
	}
}

// GetAnalysisResultsRequest represents a request to get analysis results
type GetAnalysisResultsRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// SpectrumBody is the frequency/magnitude projection returned to clients
type SpectrumBody struct {
	SampleCount   int              `json:"sample_count" doc:"Samples read from the recording"`
	SignalLength  int              `json:"signal_length" doc:"Length of the uniformly resampled signal"`
	SampleRateHz  float64          `json:"sample_rate_hz" doc:"Resampling rate in Hz"`
	PeakFrequency float64          `json:"peak_frequency" doc:"Frequency of the strongest non-DC bin in Hz"`
	PeakMagnitude float64          `json:"peak_magnitude" doc:"Magnitude of the strongest non-DC bin"`
	FrequencyData []FrequencyPoint `json:"frequency_data" doc:"One-sided magnitude spectrum"`
}

// GetAnalysisResultsResponseBody is the body of the results response
type GetAnalysisResultsResponseBody struct {
	ID         string    `json:"id" doc:"Results ID"`
	AnalysisID string    `json:"analysis_id" doc:"Analysis ID"`
	CreatedAt  time.Time `json:"created_at" doc:"Results creation timestamp"`
	SpectrumBody
}

// GetAnalysisResultsResponse represents the complete analysis results
type GetAnalysisResultsResponse struct {
	Body GetAnalysisResultsResponseBody
}

// ClearResultsRequest represents a request to discard the stored spectrum
type ClearResultsRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// ClearResultsResponse represents the response from clearing results
type ClearResultsResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// GetChartRequest represents a request for the rendered spectrum chart
type GetChartRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetChartResponse carries the rendered HTML chart
type GetChartResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// AnalyzeSpectrumRequest represents a synchronous analysis of an inline CSV body
type AnalyzeSpectrumRequest struct {
	SampleRateHz float64 `query:"sample_rate_hz" required:"true" doc:"Uniform resampling rate in Hz"`
	RawBody      []byte  `contentType:"text/csv"`
}

// AnalyzeSpectrumResponse represents the spectrum of an inline CSV body
type AnalyzeSpectrumResponse struct {
	Body SpectrumBody
}

// StartProcessingRequest represents a request to start processing an uploaded file
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// Analysis represents the core analysis entity (for internal use)
type Analysis struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"session_id"`
	Status         string     `json:"status"`
	Progress       int        `json:"progress"`
	SampleRateHz   float64    `json:"sample_rate_hz"`
	RecordingS3Key *string    `json:"recording_s3_key,omitempty"`
	ErrorMsg       *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// AnalysisResults represents the stored analysis results
type AnalysisResults struct {
	ID            string           `json:"id"`
	AnalysisID    string           `json:"analysis_id"`
	FrequencyData []FrequencyPoint `json:"frequency_data"`
	SampleCount   int              `json:"sample_count"`
	SignalLength  int              `json:"signal_length"`
	SampleRateHz  float64          `json:"sample_rate_hz"`
	PeakFrequency float64          `json:"peak_frequency"`
	PeakMagnitude float64          `json:"peak_magnitude"`
	CreatedAt     time.Time        `json:"created_at"`
}
