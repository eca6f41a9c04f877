package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := JSON(&buf, slog.LevelInfo)
	l.Info("decoded", "path", "a.aif", "width", 640)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "decoded" {
		t.Fatalf("msg: got %v want decoded", rec["msg"])
	}
	if rec["path"] != "a.aif" {
		t.Fatalf("path: got %v want a.aif", rec["path"])
	}
	if rec["width"] != float64(640) {
		t.Fatalf("width: got %v want 640", rec["width"])
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := Text(&buf, slog.LevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("records below warn leaked: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestSetup(t *testing.T) {
	t.Parallel()
	tests := []struct {
		format string
		want   string
	}{
		{format: "json", want: `"msg":"hello"`},
		{format: "text", want: "msg=hello"},
		{format: "", want: "hello"},
		{format: "Pretty", want: "hello"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l, err := Setup(&buf, tt.format, "info")
		if err != nil {
			t.Fatalf("Setup(%q): %v", tt.format, err)
		}
		l.Info("hello")
		if !strings.Contains(buf.String(), tt.want) {
			t.Fatalf("Setup(%q) output %q missing %q", tt.format, buf.String(), tt.want)
		}
	}

	if _, err := Setup(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestPretty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := Pretty(&buf, slog.LevelDebug)
	l.Debug("row decoded", "row", 3, "note", "two words")
	out := buf.String()
	for _, want := range []string{"DEBUG", "row decoded", "row=3", `note="two words"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("record not newline terminated: %q", out)
	}
}

func TestPrettyWithAndGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := Pretty(&buf, slog.LevelInfo).With("op", "brighten").WithGroup("header")
	l.Info("read", "width", 4)
	out := buf.String()
	if !strings.Contains(out, "op=brighten") {
		t.Fatalf("missing With attr: %q", out)
	}
	if !strings.Contains(out, "header.width=4") {
		t.Fatalf("missing grouped attr: %q", out)
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("debug enabled with default options")
	}
	if !h.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("info disabled with default options")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	// Must not panic or write anywhere.
	Discard().Error("dropped", "k", "v")
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext returned nil without a stored logger")
	}
	var buf bytes.Buffer
	l := Text(&buf, slog.LevelInfo)
	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Fatalf("stored logger not used: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "bogus", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLevel(%q): got %v want %v", tt.in, got, tt.want)
		}
	}
}
