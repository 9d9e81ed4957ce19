package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentRules, Output: &buf})

	logger.Info("keyword added", FieldCategory, "Food")
	logger.WithComponent(ComponentStorage).Info("saved")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, ComponentRules, first[FieldComponent])
	assert.Equal(t, "Food", first[FieldCategory])
	assert.Equal(t, ComponentStorage, second[FieldComponent])
}

func TestFromContextFallsBack(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())

	own := Discard()
	assert.Same(t, own, FromContext(NewContext(context.Background(), own)))
}

func TestRequestLoggerLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})

	var seen *Logger
	h := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.NotNil(t, seen)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.EqualValues(t, http.StatusTeapot, entry[FieldStatusCode])
	assert.Equal(t, "/x", entry[FieldPath])
	assert.NotEmpty(t, entry[FieldRequestID])
}

func TestLogFieldsBuilder(t *testing.T) {
	f := NewFields().WithOperation(OpApply).WithRule("Food", "").WithError(nil)
	assert.Equal(t, LogFields{FieldOperation: OpApply, FieldCategory: "Food"}, f)
	assert.Len(t, f.ToSlice(), 4)
}
