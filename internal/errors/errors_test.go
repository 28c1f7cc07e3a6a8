package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	err := NewIOError(ErrCodeFileNotReadable, "cannot read resume", cause)

	assert.Equal(t, "FILE_NOT_READABLE: cannot read resume (caused by: disk gone)", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewValidationError(ErrCodeInvalidRequest, "empty body", nil)
	assert.Equal(t, "INVALID_REQUEST: empty body", plain.Error())
}

func TestIsTypeAndCodeOf(t *testing.T) {
	err := NewScoringError(ErrCodeEncodingFailed, "embedding failed", nil)
	wrapped := fmt.Errorf("semantic: %w", err)

	assert.True(t, IsType(wrapped, ErrorTypeScoring))
	assert.False(t, IsType(wrapped, ErrorTypeIO))
	assert.Equal(t, ErrCodeEncodingFailed, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(fmt.Errorf("plain")))
}

func TestWithContext(t *testing.T) {
	err := NewConfigError(ErrCodeInvalidWeights, "bad weights", nil).
		WithContext("field", "semantic").
		WithContext("value", -1)

	assert.Equal(t, "semantic", err.Context["field"])
	assert.Equal(t, -1, err.Context["value"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose")
	require.Error(t, err)

	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestLogDegradedIncludesCode(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug)

	logger.LogDegraded(NewScoringError(ErrCodeVectorizationFailed, "empty vocabulary", nil), "lexical")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "lexical", record["component"])
	assert.Equal(t, ErrCodeVectorizationFailed, record["error_code"])
}

func TestLogErrorFields(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want map[string]any
	}{
		{
			name: "app error with context",
			err:  NewIOError(ErrCodeFileNotFound, "missing", nil).WithContext("path", "cv.pdf"),
			want: map[string]any{"error_code": ErrCodeFileNotFound, "error_type": "io", "path": "cv.pdf"},
		},
		{
			name: "plain error",
			err:  fmt.Errorf("boom"),
			want: map[string]any{"error": "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewWithWriter(&buf, slog.LevelInfo).LogError(tt.err, "failed", "request_id", "r1")

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, "failed", record["msg"])
			assert.Equal(t, "r1", record["request_id"])
			for k, v := range tt.want {
				assert.Equal(t, v, record[k], k)
			}
		})
	}
}
