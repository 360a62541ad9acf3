package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsQuery(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid input", InvalidInput("bad"), true},
		{"no data", NoData("empty"), true},
		{"wrapped invalid input", fmt.Errorf("revenue: %w", InvalidInput("bad")), true},
		{"integrity", Integrity("row %d", 3), false},
		{"plain error", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuery(tt.err))
		})
	}
}

func TestIsIntegrity(t *testing.T) {
	err := fmt.Errorf("load: %w", Integrity("unknown customer %q", "C-1"))
	assert.True(t, IsIntegrity(err))
	assert.False(t, IsIntegrity(InvalidInput("x")))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, InvalidInput("x").StatusCode)
	assert.Equal(t, http.StatusNotFound, NoData("x").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, Computation("x").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, Integrity("x").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, RateLimit("x").StatusCode)
}

func TestWithSuggestions(t *testing.T) {
	err := InvalidInput("bad category", "electronics", "clothing")
	assert.Equal(t, []string{"electronics", "clothing"}, err.Suggestions)
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("parse failed")
	err := IntegrityWrap(cause, "transactions.csv line %d", 4)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "transactions.csv line 4")
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	w := httptest.NewRecorder()

	WriteError(w, logger, RateLimit("Too many requests"), "req-1")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, CodeRateLimit, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestWriteError_PlainError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	w := httptest.NewRecorder()

	WriteError(w, logger, fmt.Errorf("boom"), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
