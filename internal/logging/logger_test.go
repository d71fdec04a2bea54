package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bookminify/internal/config"
	"bookminify/internal/logging"
	"bookminify/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "bookminify.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller", logging.String(logging.FieldComponent, "minify"), logging.Int("pages", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if !strings.Contains(line, "INFO [minify] – message without caller") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "pages=3") {
		t.Fatalf("expected attribute, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "debug",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"), logging.Duration("elapsed", 1500*time.Millisecond))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, fragment := range []string{`"msg":"json message"`, `"k":"v"`, `"level":"info"`, `"ts":`, `"elapsed":1500`} {
		if !strings.Contains(string(content), fragment) {
			t.Fatalf("expected %s in %q", fragment, content)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-xyz")
	ctx = services.WithStage(ctx, "pack")
	ctx = services.WithArchive(ctx, "/books/a.zip")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logging.WithContext(ctx, logger).Info("contextual log")

	out := buf.String()
	for _, fragment := range []string{"run_id=run-xyz", "stage=pack", "archive=/books/a.zip"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
}

func TestErrorWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logging.ErrorWithContext(logger, "stage failed", "extract_failed", logging.String(logging.FieldErrorHint, "check 7z"))

	out := buf.String()
	if !strings.Contains(out, "event_type=extract_failed") {
		t.Fatalf("expected event type, got %q", out)
	}
	if !strings.Contains(out, `error_hint="check 7z"`) {
		t.Fatalf("expected caller hint to win, got %q", out)
	}
	if strings.Count(out, "error_hint=") != 1 {
		t.Fatalf("expected single error hint, got %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "test")
	logger.Error("dropped")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected nop logger to be disabled")
	}
}

func TestConsoleHeaderCarriesRunSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "1a2b3c4d-5e6f-7081-92a3-b4c5d6e7f809")
	ctx = services.WithArchive(ctx, "/books/Volume 01.cbz")
	ctx = services.WithStage(ctx, "convert")
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "minify"))

	logger.Info("page converted", logging.Int64("old_bytes", 3*1024*1024), logging.Int("index", 4))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	want := `INFO [minify] Volume 01.cbz · 1a2b3c4d (convert) – page converted`
	if !strings.Contains(line, want) {
		t.Fatalf("expected header %q, got %q", want, line)
	}
	if !strings.Contains(line, `old_bytes="3.0 MiB"`) {
		t.Fatalf("expected humanized byte field, got %q", line)
	}
	if !strings.Contains(line, "index=4") {
		t.Fatalf("expected trailing attribute, got %q", line)
	}
	if strings.Contains(line, "run_id=") || strings.Contains(line, "archive=") {
		t.Fatalf("subject fields should not repeat as attributes: %q", line)
	}
}

func TestWarnWithContextKeepsCallerImpact(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logging.WarnWithContext(logger, "history unavailable", "history_open_failed", logging.String(logging.FieldImpact, "run not recorded"))

	out := buf.String()
	if !strings.Contains(out, `impact="run not recorded"`) || strings.Count(out, "impact=") != 1 {
		t.Fatalf("expected single caller impact, got %q", out)
	}
	if !strings.Contains(out, "error_hint=") {
		t.Fatalf("expected default hint, got %q", out)
	}
}
