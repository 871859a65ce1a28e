package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	var testCases = []struct {
		input  string
		expect slog.Level
	}{
		{input: "debug", expect: slog.LevelDebug},
		{input: "INFO", expect: slog.LevelInfo},
		{input: " error ", expect: slog.LevelError},
		{input: "warn", expect: slog.LevelWarn},
		{input: "", expect: slog.LevelWarn},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, ParseLevel(testCase.input), testCase.input)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(buf, FormatJSON, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Warn("depth limit reached", "workflow", "Order", "error", errors.New("boom"))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "depth limit reached", record["msg"])
	assert.Equal(t, "Order", record["workflow"])
	assert.Equal(t, "boom", record["err"])
	_, hasError := record["error"]
	assert.False(t, hasError)
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	require.NotNil(t, logger)
	logger.Error("discarded")
}
