package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // 默认值
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("ENV", "")

		cfg := NewConfigFromEnv()
		if cfg.Level != "info" {
			t.Errorf("expected default level info, got %s", cfg.Level)
		}
		if cfg.Format != "console" {
			t.Errorf("expected default format console, got %s", cfg.Format)
		}
		if cfg.Output != "stdout" {
			t.Errorf("expected default output stdout, got %s", cfg.Output)
		}
	})

	t.Run("development mode", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("LOG_LEVEL", "error") // 应该被覆盖

		cfg := NewConfigFromEnv()
		if cfg.Level != "debug" {
			t.Errorf("expected debug in development, got %s", cfg.Level)
		}
		if !cfg.AddSource {
			t.Error("expected AddSource true in development")
		}
	})
}

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&Config{Level: "debug", Format: "json"}, &buf)
	defer InitWithWriter(&Config{Level: "info"}, os.Stdout)

	if !IsDebugMode() {
		t.Error("expected debug mode")
	}

	NewModuleLogger("backend", "client").Debug("upstream call", "operation", "login")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != serviceName {
		t.Errorf("expected service %s, got %v", serviceName, entry["service"])
	}
	if entry["module"] != "backend" || entry["component"] != "client" {
		t.Errorf("unexpected module fields: %v", entry)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&Config{Level: "info", Format: "console"}, &buf)
	defer InitWithWriter(&Config{Level: "info"}, os.Stdout)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithWorkspaceID(ctx, "ws-1")

	FromContext(ctx, nil).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-1") || !strings.Contains(out, "workspace_id=ws-1") {
		t.Errorf("expected context fields in %q", out)
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Error("expected request id round trip")
	}
	if len(LogCtxFromContext(context.Background())) != 0 {
		t.Error("expected no attrs for empty context")
	}
}

func TestOpenOutput(t *testing.T) {
	if _, err := openOutput("syslog"); err == nil {
		t.Error("expected error for unknown output")
	}

	path := t.TempDir() + "/gateway.log"
	w, err := openOutput("file:" + path)
	if err != nil {
		t.Fatalf("open file output: %v", err)
	}
	if f, ok := w.(*os.File); ok {
		f.Close()
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected log file created: %v", err)
	}
}
