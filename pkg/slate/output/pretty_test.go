package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	err := (&PrettyFormatter{}).Format(&buf, sampleResult())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Source:")
	assert.Contains(t, out, "/proj")
	assert.Contains(t, out, "VER")
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "003")
	assert.Contains(t, out, "WIP")
	assert.Contains(t, out, "daemon: off")
	assert.Contains(t, out, "Foreign:")
}

func TestPrettyFormatter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	err := (&PrettyFormatter{}).Format(&buf, &Result{Source: "/proj"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No managed files found")
}

func TestPrettyFormatter_DaemonUp(t *testing.T) {
	r := sampleResult()
	r.DaemonUp = true

	var buf bytes.Buffer
	err := (&PrettyFormatter{}).Format(&buf, r)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "daemon: up")
}

func TestPrettyFormatter_Warnings(t *testing.T) {
	r := sampleResult()
	r.Warnings = []string{"/proj/locked: permission denied"}

	var buf bytes.Buffer
	err := (&PrettyFormatter{}).Format(&buf, r)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Warnings:")
	assert.Contains(t, buf.String(), "permission denied")
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "-", formatVersion(-1))
	assert.Equal(t, "001", formatVersion(1))
	assert.Equal(t, "042", formatVersion(42))
	assert.Equal(t, "117", formatVersion(117))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250ms"},
		{3 * time.Second, "3.0s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatDuration(tt.d))
	}
}
