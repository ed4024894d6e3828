package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/vibrascope/pkg/models"
)

const recording = "time,gFx,gFy,gFz\n0,0,0,1\n0.25,1,0,1\n0.5,0,0,1\n0.75,-1,0,1\n1,0,0,1\n"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAnalyze_CSV(t *testing.T) {
	path := writeFile(t, "rec.csv", recording)

	out, errOut, err := execute(t, "analyze", "--file", path, "--rate", "4")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4) // header + floor(5/2)+1 bins
	assert.Equal(t, "frequency,magnitude", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,"))

	// bin 1 at 4/(5+1) Hz
	assert.Contains(t, errOut, "peak 0.6666666666666666 Hz")
	assert.Contains(t, errOut, "(5 samples, 5 resampled at 4 Hz)")
	assert.NotContains(t, out, "peak")
}

func TestAnalyze_JSONAndChart(t *testing.T) {
	path := writeFile(t, "rec.csv", recording)
	chartPath := filepath.Join(t.TempDir(), "chart.html")

	out, _, err := execute(t, "analyze", "-f", path, "-r", "4", "--format", "json", "--chart", chartPath)
	require.NoError(t, err)

	var points []models.FrequencyPoint
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	assert.Len(t, points, 3)

	page, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Magnitude [mm/s*s]")
}

func TestAnalyze_Errors(t *testing.T) {
	dupes := writeFile(t, "dupes.csv", "time,gFx,gFy,gFz\n0,1,1,1\n0,2,1,1\n1,1,1,1\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing flags", args: []string{"analyze"}, wantErr: "required flag"},
		{name: "missing file", args: []string{"analyze", "--file", filepath.Join(t.TempDir(), "none.csv"), "--rate", "10"}, wantErr: "unable to open resource"},
		{name: "rate above limit", args: []string{"analyze", "--file", dupes, "--rate", "100000"}, wantErr: "invalid_rate"},
		{name: "unknown format", args: []string{"analyze", "--file", dupes, "--rate", "4", "--format", "xml"}, wantErr: "xml"},
		{name: "duplicates rejected", args: []string{"analyze", "--file", dupes, "--rate", "4", "--reject-duplicates"}, wantErr: "degenerate_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, out)
		})
	}
}

func TestAnalyze_DuplicatesPassThroughByDefault(t *testing.T) {
	path := writeFile(t, "dupes.csv", "time,gFx,gFy,gFz\n0,1,1,1\n0,2,1,1\n1,1,1,1\n")

	out, _, err := execute(t, "analyze", "--file", path, "--rate", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "frequency,magnitude")
}
