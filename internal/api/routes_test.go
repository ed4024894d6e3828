package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/vibrascope/internal/api/handlers"
	"github.com/RMahshie/vibrascope/pkg/models"
)

func newTestAPI(t *testing.T) humatest.TestAPI {
	_, api := humatest.New(t)
	RegisterRoutes(api, handlers.NewAnalysisHandler(nil, nil, nil, nil, handlers.DefaultLimits))
	return api
}

func TestRegisterRoutes_Paths(t *testing.T) {
	api := newTestAPI(t)
	paths := api.OpenAPI().Paths

	for _, p := range []string{
		"/api/analyses",
		"/api/analyses/{id}/process",
		"/api/analyses/{id}/status",
		"/api/analyses/{id}/results",
		"/api/analyses/{id}/chart",
		"/api/sessions/{sessionID}/analyses",
		"/api/spectrum",
	} {
		assert.Contains(t, paths, p)
	}
	require.Contains(t, paths, "/api/analyses/{id}/results")
	assert.NotNil(t, paths["/api/analyses/{id}/results"].Delete)
}

func TestAnalyzeSpectrumRoute(t *testing.T) {
	api := newTestAPI(t)

	csv := "time,gFx,gFy,gFz\n0,0,0,1\n0.25,1,0,1\n0.5,0,0,1\n0.75,-1,0,1\n1,0,0,1\n"
	resp := api.Post("/api/spectrum?sample_rate_hz=4", "Content-Type: text/csv", strings.NewReader(csv))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body models.SpectrumBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 5, body.SampleCount)
	assert.Equal(t, 5, body.SignalLength)
	assert.Len(t, body.FrequencyData, 3)
}

func TestAnalyzeSpectrumRoute_Errors(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/spectrum?sample_rate_hz=4", "Content-Type: text/csv", strings.NewReader("time,gFx,gFy,gFz\n0,a,b\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/api/spectrum?sample_rate_hz=-3", "Content-Type: text/csv", strings.NewReader("time,gFx,gFy,gFz\n"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStatusRoute_InvalidID(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/api/analyses/not-a-uuid/status")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
