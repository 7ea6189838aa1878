package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	log := Default()
	if log == nil {
		t.Fatal("Default() returned nil")
	}
	// Should not panic
	log.Info("training started")
	log.Debug("epoch finished")
	log.Warn("no held-out split")
	log.Error("open dataset")
}

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("training started", "model", "hole")

	output := buf.String()
	if !strings.Contains(output, "training started") {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, `"model":"hole"`) {
		t.Fatalf("expected model attr in JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Fatalf("expected level INFO in output, got: %s", output)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")

	if buf.Len() > 0 {
		t.Fatalf("expected no output for info/debug at warn level, got: %s", buf.String())
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestPretty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("evaluating", "dataset", "toy")

	output := buf.String()
	if !strings.Contains(output, "evaluating") {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "dataset=toy") {
		t.Fatalf("expected 'dataset=toy' in output, got: %s", output)
	}
}

func TestPrettyDebugLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug)
	log.Debug("epoch finished")

	if !strings.Contains(buf.String(), "epoch finished") {
		t.Fatalf("expected debug message at debug level, got: %s", buf.String())
	}
}

func TestPrettyFloatsCompact(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("epoch finished", "loss", 0.34014852, "lr", 0.1*1e-4)

	output := buf.String()
	if !strings.Contains(output, "loss=0.3401") {
		t.Fatalf("expected compact loss in output, got: %s", output)
	}
	if !strings.Contains(output, "lr=1e-05") {
		t.Fatalf("expected compact learning rate in output, got: %s", output)
	}
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	childLog := log.With("component", "trainer")
	childLog.Info("child message")

	output := buf.String()
	if !strings.Contains(output, `"component":"trainer"`) {
		t.Fatalf("expected component attr in output, got: %s", output)
	}
	if !strings.Contains(output, "child message") {
		t.Fatalf("expected 'child message' in output, got: %s", output)
	}
}

func TestWithGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	groupLog := log.WithGroup("eval")
	groupLog.Info("grouped message", "mrr", 0.42)

	output := buf.String()
	if !strings.Contains(output, "grouped message") {
		t.Fatalf("expected 'grouped message' in output, got: %s", output)
	}
}

func TestForTerminalPlainWriter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := ForTerminal(&buf, slog.LevelInfo)
	log.Info("run recorded")

	output := buf.String()
	if !strings.Contains(output, "run recorded") {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if strings.Contains(output, "\033[") {
		t.Fatalf("expected no ANSI escapes when writer is not a terminal, got: %q", output)
	}
}

func TestFromContextDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := FromContext(ctx)
	if log == nil {
		t.Fatal("FromContext with no logger returned nil")
	}
	// Should not panic
	log.Info("from context")
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	retrieved := FromContext(ctx)

	retrieved.Info("roundtrip test")
	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelInfo}, // case-sensitive
	}

	for _, tc := range tests {
		result := ParseLevel(tc.input)
		if result != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, result)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("expected warn to be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	h2 := h.WithAttrs([]slog.Attr{slog.String("run_id", "r1")})
	logger := slog.New(h2)
	logger.Info("with attrs")

	output := buf.String()
	if !strings.Contains(output, "run_id=r1") {
		t.Fatalf("expected 'run_id=r1' in output, got: %s", output)
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	t.Parallel()

	t.Run("single", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, nil).WithGroup("eval"))
		logger.Info("grouped", "mrr", "high")
		if !strings.Contains(buf.String(), "eval.mrr=high") {
			t.Fatalf("expected 'eval.mrr=high' in output, got: %s", buf.String())
		}
	})
	t.Run("nested", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, nil).WithGroup("a").WithGroup("b"))
		logger.Info("nested", "key", "val")
		if !strings.Contains(buf.String(), "a.b.key=val") {
			t.Fatalf("expected 'a.b.key=val' in output, got: %s", buf.String())
		}
	})
	t.Run("empty name keeps handler", func(t *testing.T) {
		h := NewPrettyHandler(&bytes.Buffer{}, nil)
		if h.WithGroup("") != h {
			t.Fatal("WithGroup empty string should return same handler")
		}
	})
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil))
	logger.Info("quoting", "plain", "toy", "spaced", "no such run")

	output := buf.String()
	if !strings.Contains(output, "plain=toy") {
		t.Fatalf("expected unquoted simple string, got: %s", output)
	}
	if strings.Contains(output, `plain="toy"`) {
		t.Fatalf("simple strings should not be quoted, got: %s", output)
	}
	if !strings.Contains(output, `spaced="no such run"`) {
		t.Fatalf("expected quoted string with spaces, got: %s", output)
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{"has\nnewline", true},
		{`has"quote`, true},
		{"", false},
		{"no-special-chars", false},
	}

	for _, tc := range tests {
		result := needsQuoting(tc.input)
		if result != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, result)
		}
	}
}
