package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON %q: %v", buf.String(), err)
	}
	return entry
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil || logger.Logger == nil {
		t.Fatal("NewLogger() returned an unusable logger")
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected slog.Level
	}{
		{"debug level", "DEBUG", slog.LevelDebug},
		{"warn level", "WARN", slog.LevelWarn},
		{"warning level", "WARNING", slog.LevelWarn},
		{"error level", "ERROR", slog.LevelError},
		{"lowercase debug", "debug", slog.LevelDebug},
		{"invalid level", "INVALID", slog.LevelInfo},
		{"empty value", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LevelEnvVar, tt.envValue)
			if level := getLogLevelFromEnv(); level != tt.expected {
				t.Errorf("getLogLevelFromEnv() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestRunID(t *testing.T) {
	t.Run("generated ids are distinct", func(t *testing.T) {
		id1, id2 := GenerateRunID(), GenerateRunID()
		if len(id1) != 16 {
			t.Errorf("GenerateRunID() returned wrong length: %d", len(id1))
		}
		if id1 == id2 {
			t.Error("GenerateRunID() returned duplicate IDs")
		}
	})

	t.Run("round trip through context", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "run-1")
		if got := GetRunID(ctx); got != "run-1" {
			t.Errorf("GetRunID() = %q, want %q", got, "run-1")
		}
	})

	t.Run("empty id is generated", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "")
		if got := GetRunID(ctx); len(got) != 16 {
			t.Errorf("auto-generated run ID has wrong length: %q", got)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if got := GetRunID(context.Background()); got != "" {
			t.Errorf("GetRunID() = %q, want empty", got)
		}
	})
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWriter(&buf, slog.LevelDebug)
	ctx := WithRunID(context.Background(), "run-123")

	tests := []struct {
		name  string
		log   func()
		level string
	}{
		{"debug", func() { logger.Debug(ctx, "m", "k", "v") }, "DEBUG"},
		{"info", func() { logger.Info(ctx, "m", "k", "v") }, "INFO"},
		{"warn", func() { logger.Warn(ctx, "m", "k", "v") }, "WARN"},
		{"error", func() { logger.Error(ctx, "m", errors.New("boom"), "k", "v") }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			entry := decodeLine(t, &buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if entry["run_id"] != "run-123" {
				t.Errorf("run_id = %v, want run-123", entry["run_id"])
			}
			if entry["k"] != "v" {
				t.Errorf("k = %v, want v", entry["k"])
			}
			if tt.level == "ERROR" && entry["error"] != "boom" {
				t.Errorf("error = %v, want boom", entry["error"])
			}
		})
	}
}

func TestLoggerNonFiniteFloats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWriter(&buf, slog.LevelInfo)

	logger.Info(context.Background(), "velocity", "vx", math.NaN(), "vy", math.Inf(1), "vz", 1.5)

	entry := decodeLine(t, &buf)
	if entry["vx"] != "NaN" || entry["vy"] != "+Inf" {
		t.Errorf("non-finite floats = %v, %v; want strings", entry["vx"], entry["vy"])
	}
	if entry["vz"] != 1.5 {
		t.Errorf("vz = %v, want 1.5", entry["vz"])
	}
}

func TestLogWithoutRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWriter(&buf, slog.LevelInfo)

	logger.Info(context.Background(), "test message")

	if strings.Contains(buf.String(), "run_id") {
		t.Error("Log should not contain run_id when none is set in context")
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must not write anywhere observable.
	Discard().Error(context.Background(), "dropped", errors.New("x"))
}

func TestWrapError(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		if result := WrapError(nil, "context"); result != nil {
			t.Errorf("WrapError(nil) should return nil, got %v", result)
		}
	})

	t.Run("wrap error with formatted context", func(t *testing.T) {
		originalErr := errors.New("original error")
		wrapped := WrapError(originalErr, "load level %s", "a.yaml")

		if wrapped.Error() != "load level a.yaml: original error" {
			t.Errorf("WrapError() = %q", wrapped.Error())
		}
		if !errors.Is(wrapped, originalErr) {
			t.Error("WrapError() should preserve original error")
		}
	})
}
