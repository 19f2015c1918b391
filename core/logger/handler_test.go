package logger

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"log/slog"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "42:9:7")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "audio")
	LogEvent(ctx, log, slog.LevelInfo, "process.done",
		slog.String("status", "ok"),
		slog.String("action", "enhance"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=audio", "event=process.done", "status=ok", "rid="}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "11:33:22")

	log := slog.New(handler).With("component", "session")
	LogEvent(ctx, log, slog.LevelError, "store.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "STORE_FAIL"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"session"`, `"event":"store.failed"`, `"status":"fail"`, `"rid":"11:33:22"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerDurationKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: formatKV,
	})
	log := slog.New(handler)
	LogEvent(Background(), log, slog.LevelInfo, "timing",
		slog.Duration("duration", 1500000000),
		slog.Duration("startup_duration", 250000000),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "duration_ms=1500") {
		t.Errorf("missing duration_ms in %s", line)
	}
	if !strings.Contains(line, "startup_duration_ms=250") {
		t.Errorf("missing startup_duration_ms in %s", line)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "hello\x00world\x7f"
	if got := Sanitize(in); got != "helloworld" {
		t.Errorf("Sanitize = %q", got)
	}
	if got := SanitizeLimit("abcdef", 3); got != "abc" {
		t.Errorf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Errorf("SanitizeLimit zero max = %q", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	allowed := 0
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("allowed = %d, want 3", allowed)
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Error("disabled sampler must allow everything")
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := []struct {
		spec     string
		num, den int
	}{
		{"1/50", 1, 50},
		{"25", 1, 25},
		{"", 0, 0},
		{"bogus", 0, 0},
		{"0", 0, 0},
	}
	for _, tc := range cases {
		num, den := parseRatioSpec(tc.spec)
		if num != tc.num || den != tc.den {
			t.Errorf("parseRatioSpec(%q) = %d/%d, want %d/%d", tc.spec, num, den, tc.num, tc.den)
		}
	}
}
