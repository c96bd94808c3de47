package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-emd/internal/testutil"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func samplesText(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, "\n")
}

func TestRunWritesCSV(t *testing.T) {
	x := testutil.SumOfSines(1000, 500, 5, 80)

	stdout, stderr, err := execute(t, samplesText(x), "run", "--max-imfs", "2", "--residual", "--sample-rate", "1000")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Decomposition complete")
	assert.Contains(t, stderr, "IMF summary")
	assert.Contains(t, stderr, "dominant_freq=")

	records, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(x)+1)

	header := records[0]
	require.GreaterOrEqual(t, len(header), 2)
	assert.Equal(t, "imf1", header[0])
	assert.Equal(t, "residual", header[len(header)-1])
	assert.LessOrEqual(t, len(header), 3)

	// Columns add back up to the input
	for i, rec := range records[1:] {
		sum := 0.0
		for _, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			require.NoError(t, err)
			sum += v
		}
		assert.InDelta(t, x[i], sum, 1e-9)
	}
}

func TestRunFromFileWithConfig(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "signal.txt")
	require.NoError(t, os.WriteFile(input, []byte(samplesText(testutil.SumOfSines(1000, 400, 6, 70))), 0o644))

	cfgPath := filepath.Join(dir, "ensemble.yaml")
	_, _, err := execute(t, "", "config", "--type", "ensemble_sift", "--output", cfgPath)
	require.NoError(t, err)

	first, _, err := execute(t, "", "run", "--config", cfgPath, "--input", input, "--seed", "3", "--max-imfs", "2", "--workers", "2", "-v", "error")
	require.NoError(t, err)
	second, _, err := execute(t, "", "run", "--config", cfgPath, "--input", input, "--seed", "3", "--max-imfs", "2", "-v", "error")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, _, err = execute(t, "", "run", "--config", cfgPath, "--type", "mask_sift", "--input", input)
	assert.ErrorContains(t, err, "conflicts")
}

func TestConfigPrintsYAML(t *testing.T) {
	stdout, _, err := execute(t, "", "config", "--type", "mask_sift")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "sift_type: mask_sift\n---\n"))
	assert.Contains(t, stdout, "mask_step_factor: 2")
}

func TestRunRejects(t *testing.T) {
	_, _, err := execute(t, "", "run")
	assert.Error(t, err)

	_, _, err = execute(t, "1 2 x", "run")
	assert.ErrorContains(t, err, "sample 2")

	_, _, err = execute(t, "1 2 3", "run", "--type", "hht")
	assert.ErrorContains(t, err, "unknown sift type")

	_, _, err = execute(t, "1 2 3", "run", "--verbose", "chatty")
	assert.Error(t, err)
}
