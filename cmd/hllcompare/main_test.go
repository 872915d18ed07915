package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lytics/hll/v2"
	"github.com/lytics/hll/v2/internal/config"
)

func TestParseRange(t *testing.T) {
	testCases := []struct {
		in     string
		expect []uint
		ok     bool
	}{
		{"4-8", []uint{4, 5, 6, 7, 8}, true},
		{"14-14", []uint{14}, true},
		{"4,10, 14", []uint{4, 10, 14}, true},
		{"12", []uint{12}, true},
		{"8-4", nil, false},
		{"a-4", nil, false},
		{"4,x", nil, false},
	}

	for _, testCase := range testCases {
		got, err := parseRange(testCase.in)
		if !testCase.ok {
			require.Error(t, err, testCase.in)
			continue
		}
		require.NoError(t, err, testCase.in)
		require.Equal(t, testCase.expect, got, testCase.in)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "access.log")
	var b strings.Builder
	for _, addr := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.1", "10.0.0.3", "10.0.0.2"} {
		b.WriteString(`{"remote_addr": "` + addr + `", "status": 200}` + "\n")
	}
	require.NoError(t, os.WriteFile(logPath, []byte(b.String()), 0o644))

	return &config.Config{
		Log:       config.LogConfig{Path: logPath, Field: "remote_addr"},
		Estimator: config.EstimatorConfig{Precision: 10, Hasher: "murmur3", Workers: 1},
		Report:    config.ReportConfig{State: filepath.Join(dir, "sketch.bin")},
	}
}

func TestRunSavesState(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, run(context.Background(), cfg))

	buf, err := os.ReadFile(cfg.Report.State)
	require.NoError(t, err)

	h := &hll.Hll{}
	require.NoError(t, h.UnmarshalBinary(buf))
	require.Equal(t, uint(10), h.Precision())
	require.InDelta(t, 3, h.Count(), 1)
}

func TestRunSweepHTML(t *testing.T) {
	cfg := testConfig(t)
	cfg.Estimator.Sweep = []uint{4, 6, 8}
	cfg.Report.HTML = filepath.Join(t.TempDir(), "sweep.html")
	require.NoError(t, run(context.Background(), cfg))

	page, err := os.ReadFile(cfg.Report.HTML)
	require.NoError(t, err)
	require.Contains(t, string(page), "<html")

	buf, err := os.ReadFile(cfg.Report.State)
	require.NoError(t, err)
	require.Len(t, buf, 2+1<<8) // last precision of the sweep
}

func TestRunMissingLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Path = filepath.Join(t.TempDir(), "missing.log")
	require.ErrorIs(t, run(context.Background(), cfg), os.ErrNotExist)
}
