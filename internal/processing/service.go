package processing

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/vibrascope/internal/repository"
	"github.com/RMahshie/vibrascope/internal/storage"
	"github.com/RMahshie/vibrascope/pkg/models"
)

type ProcessingService interface {
	ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error
}

type processingService struct {
	s3         storage.S3Service
	repository repository.AnalysisRepository
	pipeline   *Pipeline
}

func NewProcessingService(s3Service storage.S3Service, repo repository.AnalysisRepository, pipeline *Pipeline) ProcessingService {
	if pipeline == nil {
		pipeline = NewPipeline()
	}
	return &processingService{
		s3:         s3Service,
		repository: repo,
		pipeline:   pipeline,
	}
}

func (s *processingService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	logger := log.With().Str("analysisID", analysisID.String()).Logger()

	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 10); err != nil {
		return err
	}

	// Step 2: Get analysis details
	analysis, err := s.repository.GetByID(ctx, analysisID)
	if err != nil {
		return err
	}
	if analysis.RecordingS3Key == nil {
		s.markFailed(ctx, logger, analysisID, "No recording was uploaded for this analysis")
		return nil
	}

	// Step 3: Download the recording
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 20); err != nil {
		return err
	}

	data, err := s.s3.DownloadFile(ctx, *analysis.RecordingS3Key)
	if err != nil {
		logger.Error().Err(err).Str("key", *analysis.RecordingS3Key).Msg("Recording download failed")
		s.markFailed(ctx, logger, analysisID, "Failed to download recording")
		return nil // Don't return error, status is updated to failed
	}
	logger.Info().Int("bytes", len(data)).Msg("Recording downloaded")

	// Step 4: Run the spectrum pipeline
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 50); err != nil {
		return err
	}

	result, err := s.pipeline.RunReader(bytes.NewReader(data), analysis.SampleRateHz)
	if err != nil {
		kind, _ := models.KindOf(err)
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("Spectrum pipeline failed")
		s.markFailed(ctx, logger, analysisID, FailureMessage(err))
		return nil
	}

	// Step 5: Store results
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 90); err != nil {
		return err
	}

	results := &models.AnalysisResults{
		ID:            uuid.New().String(),
		AnalysisID:    analysis.ID,
		FrequencyData: result.Points,
		SampleCount:   result.SampleCount,
		SignalLength:  result.SignalLength,
		SampleRateHz:  result.SampleRateHz,
		PeakFrequency: result.Peak.Frequency,
		PeakMagnitude: result.Peak.Magnitude,
		CreatedAt:     time.Now(),
	}

	if err := s.repository.StoreResults(ctx, results); err != nil {
		return err
	}

	// Step 6: Mark complete
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusCompleted, 100); err != nil {
		return err
	}

	logger.Info().
		Int("samples", result.SampleCount).
		Int("bins", len(result.Points)).
		Float64("peakHz", result.Peak.Frequency).
		Msg("Analysis completed")

	return nil
}

// markFailed stores msg as the failure reason; a failed write is only logged
func (s *processingService) markFailed(ctx context.Context, logger zerolog.Logger, analysisID uuid.UUID, msg string) {
	if err := s.repository.UpdateError(ctx, analysisID, msg); err != nil {
		logger.Error().Err(err).Str("reason", msg).Msg("Failed to record analysis failure")
	}
}

// FailureMessage turns a pipeline error into a message for the client
func FailureMessage(err error) string {
	kind, ok := models.KindOf(err)
	if !ok {
		return fmt.Sprintf("Analysis failed: %v", err)
	}

	switch kind {
	case models.KindResourceUnavailable:
		return "The recording could not be opened."
	case models.KindMalformedRecord:
		return fmt.Sprintf("The recording contains an invalid record (%v).", err)
	case models.KindInsufficientData:
		return "The recording needs at least two samples spanning the resampling interval."
	case models.KindDegenerateInterval:
		return "The recording contains duplicate timestamps."
	case models.KindUnorderedTimestamps:
		return "The recording timestamps are not in ascending order."
	case models.KindInvalidRate:
		return "The sample rate must be a positive number of Hz."
	case models.KindSignalTooLong:
		return "The recording spans too long a time for this sample rate. Lower the rate or split the recording."
	case models.KindEmptySignal:
		return "Resampling produced an empty signal."
	default:
		return fmt.Sprintf("Analysis failed: %v", err)
	}
}
