package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RMahshie/vibrascope/internal/display"
	"github.com/RMahshie/vibrascope/internal/processing"
	"github.com/RMahshie/vibrascope/internal/repository"
	"github.com/RMahshie/vibrascope/internal/storage"
	"github.com/RMahshie/vibrascope/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Limits bounds what clients may submit
type Limits struct {
	MaxSampleRateHz float64
	MaxUploadBytes  int64
}

// DefaultLimits matches the defaults of the config package
var DefaultLimits = Limits{
	MaxSampleRateHz: 99999,
	MaxUploadBytes:  100 * 1024 * 1024,
}

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	repo          repository.AnalysisRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
	pipeline      *processing.Pipeline
	limits        Limits
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(repo repository.AnalysisRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService, pipeline *processing.Pipeline, limits Limits) *AnalysisHandler {
	if pipeline == nil {
		pipeline = processing.NewPipeline()
	}
	return &AnalysisHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
		pipeline:      pipeline,
		limits:        limits,
	}
}

// CreateAnalysis creates a new analysis and returns an upload URL
func (h *AnalysisHandler) CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.CreateAnalysisResponse, error) {
	log.Info().Int64("fileSize", req.Body.FileSize).Float64("sampleRateHz", req.Body.SampleRateHz).Msg("Creating new analysis")

	if req.Body.FileSize <= 0 {
		return nil, huma.Error400BadRequest("Recording is empty.", nil)
	}
	if h.limits.MaxUploadBytes > 0 && req.Body.FileSize > h.limits.MaxUploadBytes {
		return nil, huma.Error400BadRequest("Recording too large. Please upload a shorter recording.", nil)
	}
	if err := h.checkRate(req.Body.SampleRateHz); err != nil {
		return nil, err
	}

	analysisID := uuid.New()
	recordingKey := fmt.Sprintf("recordings/%s.csv", analysisID)

	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, recordingKey, req.Body.MimeType)
	if err != nil {
		if strings.Contains(err.Error(), "invalid content type") {
			return nil, huma.Error400BadRequest("Recording format not supported. Please upload a CSV file.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	analysis := &models.Analysis{
		ID:             analysisID.String(),
		SessionID:      req.Body.SessionID,
		Status:         models.StatusPending,
		Progress:       0,
		SampleRateHz:   req.Body.SampleRateHz,
		RecordingS3Key: &recordingKey,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.repo.Create(ctx, analysis); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create analysis", err)
	}
	log.Info().Str("analysisID", analysis.ID).Str("sessionID", req.Body.SessionID).Msg("Analysis created, returning upload URL")

	return &models.CreateAnalysisResponse{
		Body: models.CreateAnalysisResponseBody{
			ID:        analysis.ID,
			UploadURL: uploadURL,
			ExpiresIn: int(storage.UploadURLExpiry.Seconds()),
		},
	}, nil
}

// GetAnalysisStatus returns the current status of an analysis
func (h *AnalysisHandler) GetAnalysisStatus(ctx context.Context, req *models.GetAnalysisStatusRequest) (*models.GetAnalysisStatusResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, notFoundOr500("Analysis not found", err)
	}

	return &models.GetAnalysisStatusResponse{
		Body: h.statusBody(ctx, analysis),
	}, nil
}

// ListSessionAnalyses returns every analysis created by a session
func (h *AnalysisHandler) ListSessionAnalyses(ctx context.Context, req *models.ListSessionAnalysesRequest) (*models.ListSessionAnalysesResponse, error) {
	analyses, err := h.repo.GetBySessionID(ctx, req.SessionID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list analyses", err)
	}

	resp := &models.ListSessionAnalysesResponse{}
	resp.Body.Analyses = make([]models.GetAnalysisStatusResponseBody, 0, len(analyses))
	for _, analysis := range analyses {
		resp.Body.Analyses = append(resp.Body.Analyses, h.statusBody(ctx, analysis))
	}
	return resp, nil
}

func (h *AnalysisHandler) statusBody(ctx context.Context, analysis *models.Analysis) models.GetAnalysisStatusResponseBody {
	body := models.GetAnalysisStatusResponseBody{
		ID:       analysis.ID,
		Status:   analysis.Status,
		Progress: analysis.Progress,
		Message:  h.generateStatusMessage(analysis.Status, analysis.Progress),
		Error:    analysis.ErrorMsg,
	}

	if analysis.Status == models.StatusCompleted {
		if id, err := uuid.Parse(analysis.ID); err == nil {
			results, err := h.repo.GetResults(ctx, id)
			if err == nil && results != nil {
				body.ResultsID = &results.ID
			}
		}
	}
	return body
}

// GetAnalysisResults returns the analysis results
func (h *AnalysisHandler) GetAnalysisResults(ctx context.Context, req *models.GetAnalysisResultsRequest) (*models.GetAnalysisResultsResponse, error) {
	results, err := h.completedResults(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &models.GetAnalysisResultsResponse{
		Body: models.GetAnalysisResultsResponseBody{
			ID:         results.ID,
			AnalysisID: results.AnalysisID,
			CreatedAt:  results.CreatedAt,
			SpectrumBody: models.SpectrumBody{
				SampleCount:   results.SampleCount,
				SignalLength:  results.SignalLength,
				SampleRateHz:  results.SampleRateHz,
				PeakFrequency: results.PeakFrequency,
				PeakMagnitude: results.PeakMagnitude,
				FrequencyData: results.FrequencyData,
			},
		},
	}, nil
}

// ClearResults discards the stored spectrum of an analysis
func (h *AnalysisHandler) ClearResults(ctx context.Context, req *models.ClearResultsRequest) (*models.ClearResultsResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	if err := h.repo.DeleteResults(ctx, analysisID); err != nil {
		return nil, notFoundOr500("No results to clear", err)
	}
	log.Info().Str("analysisID", analysisID.String()).Msg("Results cleared")

	resp := &models.ClearResultsResponse{}
	resp.Body.Message = "Results cleared"
	return resp, nil
}

// GetChart renders the stored spectrum as an HTML line chart
func (h *AnalysisHandler) GetChart(ctx context.Context, req *models.GetChartRequest) (*models.GetChartResponse, error) {
	results, err := h.completedResults(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	chart := display.Chart{
		Title:        "Vibration spectrum " + results.AnalysisID,
		SampleRateHz: results.SampleRateHz,
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, results.FrequencyData); err != nil {
		return nil, huma.Error500InternalServerError("Failed to render chart", err)
	}

	return &models.GetChartResponse{
		ContentType: "text/html; charset=utf-8",
		Body:        buf.Bytes(),
	}, nil
}

// completedResults loads the results of a completed analysis
func (h *AnalysisHandler) completedResults(ctx context.Context, id string) (*models.AnalysisResults, error) {
	analysisID, err := uuid.Parse(id)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, notFoundOr500("Analysis not found", err)
	}

	if analysis.Status != models.StatusCompleted {
		return nil, huma.Error409Conflict("Analysis not yet completed",
			fmt.Errorf("analysis status is %s", analysis.Status))
	}

	results, err := h.repo.GetResults(ctx, analysisID)
	if err != nil {
		return nil, notFoundOr500("Results not found", err)
	}
	return results, nil
}

// AnalyzeSpectrum runs the pipeline synchronously on a CSV request body
func (h *AnalysisHandler) AnalyzeSpectrum(ctx context.Context, req *models.AnalyzeSpectrumRequest) (*models.AnalyzeSpectrumResponse, error) {
	if h.limits.MaxUploadBytes > 0 && int64(len(req.RawBody)) > h.limits.MaxUploadBytes {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "Recording too large for synchronous analysis")
	}
	if err := h.checkRate(req.SampleRateHz); err != nil {
		return nil, err
	}

	result, err := h.pipeline.RunReader(bytes.NewReader(req.RawBody), req.SampleRateHz)
	if err != nil {
		return nil, pipelineError(err)
	}

	log.Info().
		Int("samples", result.SampleCount).
		Int("bins", len(result.Points)).
		Float64("peakHz", result.Peak.Frequency).
		Msg("Inline spectrum computed")

	return &models.AnalyzeSpectrumResponse{Body: result.Body()}, nil
}

// StartProcessing starts processing an uploaded file
func (h *AnalysisHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, notFoundOr500("Analysis not found", err)
	}
	if analysis.Status == models.StatusProcessing {
		return nil, huma.Error409Conflict("Analysis is already processing")
	}

	// Start processing in background (don't wait for completion)
	log.Info().Str("analysisID", analysisID.String()).Msg("Starting background processing goroutine")
	go h.process(analysisID)

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

// process runs one analysis in the background. A panic marks the analysis
// failed instead of taking the server down.
func (h *AnalysisHandler) process(analysisID uuid.UUID) {
	logger := log.With().Str("analysisID", analysisID.String()).Logger()
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Processing panicked")
			h.recordFailure(ctx, logger, analysisID, "Processing failed unexpectedly")
		}
	}()

	if err := h.processingSvc.ProcessAnalysis(ctx, analysisID); err != nil {
		logger.Error().Err(err).Msg("Processing failed")
		h.recordFailure(ctx, logger, analysisID, fmt.Sprintf("Processing failed: %v", err))
	}
}

func (h *AnalysisHandler) recordFailure(ctx context.Context, logger zerolog.Logger, analysisID uuid.UUID, msg string) {
	if err := h.repo.UpdateError(ctx, analysisID, msg); err != nil {
		logger.Error().Err(err).Str("reason", msg).Msg("Failed to record analysis failure")
	}
}

func (h *AnalysisHandler) checkRate(rate float64) error {
	if !(rate > 0) {
		return huma.Error400BadRequest("Sample rate must be a positive number of Hz")
	}
	if h.limits.MaxSampleRateHz > 0 && rate > h.limits.MaxSampleRateHz {
		return huma.Error400BadRequest(fmt.Sprintf("Sample rate must not exceed %v Hz", h.limits.MaxSampleRateHz))
	}
	return nil
}

// pipelineError maps a pipeline failure to an HTTP status
func pipelineError(err error) error {
	msg := processing.FailureMessage(err)
	kind, _ := models.KindOf(err)
	switch kind {
	case models.KindResourceUnavailable:
		return huma.Error404NotFound(msg, err)
	case models.KindInvalidRate, models.KindInvalidRequest:
		return huma.Error400BadRequest(msg, err)
	default:
		return huma.Error422UnprocessableEntity(msg, err)
	}
}

func notFoundOr500(msg string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return huma.Error404NotFound(msg, err)
	}
	return huma.Error500InternalServerError(msg, err)
}

// generateStatusMessage creates a human-readable status message
func (h *AnalysisHandler) generateStatusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Analysis queued for processing..."
	case models.StatusProcessing:
		if progress < 20 {
			return "Starting analysis..."
		} else if progress < 50 {
			return "Downloading recording..."
		} else if progress < 90 {
			return "Computing spectrum..."
		} else {
			return "Storing results..."
		}
	case models.StatusCompleted:
		return "Analysis complete!"
	case models.StatusFailed:
		return "Analysis failed. Please check the recording and try again."
	default:
		return "Unknown status"
	}
}
