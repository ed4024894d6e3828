package api

import (
	"net/http"

	"github.com/RMahshie/vibrascope/internal/api/handlers"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, analysisHandler *handlers.AnalysisHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "createAnalysis",
		Method:      http.MethodPost,
		Path:        "/api/analyses",
		Summary:     "Create a new analysis",
		Description: "Creates a new analysis record and returns an upload URL for the CSV recording",
		Tags:        []string{"Analysis"},
	}, analysisHandler.CreateAnalysis)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/analyses/{id}/process",
		Summary:     "Start processing analysis",
		Description: "Starts resampling and transforming an uploaded recording",
		Tags:        []string{"Analysis"},
	}, analysisHandler.StartProcessing)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisStatus",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/status",
		Summary:     "Get analysis status",
		Description: "Returns the current status and progress of an analysis",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisResults",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/results",
		Summary:     "Get analysis results",
		Description: "Returns the one-sided magnitude spectrum of a completed analysis",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisResults)

	huma.Register(api, huma.Operation{
		OperationID: "clearAnalysisResults",
		Method:      http.MethodDelete,
		Path:        "/api/analyses/{id}/results",
		Summary:     "Clear analysis results",
		Description: "Discards the stored spectrum of an analysis",
		Tags:        []string{"Analysis"},
	}, analysisHandler.ClearResults)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisChart",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/chart",
		Summary:     "Get spectrum chart",
		Description: "Renders the spectrum of a completed analysis as an HTML line chart",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetChart)

	huma.Register(api, huma.Operation{
		OperationID: "listSessionAnalyses",
		Method:      http.MethodGet,
		Path:        "/api/sessions/{sessionID}/analyses",
		Summary:     "List session analyses",
		Description: "Returns the analyses created by a client session, newest first",
		Tags:        []string{"Analysis"},
	}, analysisHandler.ListSessionAnalyses)

	huma.Register(api, huma.Operation{
		OperationID: "analyzeSpectrum",
		Method:      http.MethodPost,
		Path:        "/api/spectrum",
		Summary:     "Analyze a recording inline",
		Description: "Computes the spectrum of a CSV recording sent as the request body",
		Tags:        []string{"Spectrum"},
	}, analysisHandler.AnalyzeSpectrum)
}
