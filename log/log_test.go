package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func record(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON record %q: %v", buf.String(), err)
	}

	return m
}

func TestMake_Defaults(t *testing.T) {
	l := Make(nil)

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("unexpected defaults: level %v, format %v", l.Level(), l.Format())
	}

	if l.callsite != DefaultCallsite || l.pretty != DefaultPretty {
		t.Errorf("unexpected defaults: %+v", l.config)
	}

	if l.output == nil {
		t.Error("expected nil writer replaced by io.Discard")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		min  Level
		log  func(Logger)
		want string
	}{
		{LevelInfo, func(l Logger) { l.Debug("x") }, ""},
		{LevelInfo, func(l Logger) { l.Info("x") }, "INFO"},
		{LevelDebug, func(l Logger) { l.Debug("x") }, "DEBUG"},
		{LevelTrace, func(l Logger) { l.Trace("x") }, "TRACE"},
		{LevelError, func(l Logger) { l.Warn("x") }, ""},
		{LevelError, func(l Logger) { l.Error("x") }, "ERROR"},
		{LevelWarn, func(l Logger) { l.Log(t.Context(), LevelWarn, "x") }, "WARN"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		tt.log(Make(&buf, WithLevel(tt.min), WithPretty(false)))

		if tt.want == "" {
			if buf.Len() != 0 {
				t.Errorf("min %v: expected nothing, got %q", tt.min, buf.String())
			}

			continue
		}

		if got := record(t, &buf)["level"]; got != tt.want {
			t.Errorf("min %v: level = %v, want %s", tt.min, got, tt.want)
		}
	}
}

func TestLogger_Callsite(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCallsite(true), WithPretty(false)).Info("here")

	source, ok := record(t, &buf)["source"].(map[string]any)
	if !ok {
		t.Fatalf("expected source in %s", buf.String())
	}

	if file, _ := source["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("expected callsite in log_test.go, got %v", source["file"])
	}

	buf.Reset()
	Make(&buf, WithPretty(false)).Info("here")

	if _, ok := record(t, &buf)["source"]; ok {
		t.Error("expected no source without callsite")
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   func(string) bool
	}{
		{"RFC3339", func(s string) bool {
			_, err := time.Parse(time.RFC3339, s)

			return err == nil
		}},
		{"rfc-3339-nano", func(s string) bool { return strings.Contains(s, "T") }},
		{"2006", func(s string) bool { return len(s) == 4 }},
		{"none", nil},
		{"", nil},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		Make(&buf, WithTimeLayout(tt.layout), WithPretty(false)).Info("t")

		ts, ok := record(t, &buf)["time"].(string)

		switch {
		case tt.want == nil && ok:
			t.Errorf("%q: expected no timestamp, got %q", tt.layout, ts)
		case tt.want != nil && (!ok || !tt.want(ts)):
			t.Errorf("%q: unexpected timestamp %q", tt.layout, ts)
		}
	}
}

func TestLogger_WrapAndWith(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithPretty(false), WithTimeLayout("none"))
	text := base.Wrap(WithFormat(FormatText))

	if base.Format() != FormatJSON || text.Format() != FormatText {
		t.Fatalf("Wrap changed the original: %v, %v", base.Format(), text.Format())
	}

	text.With(slog.String("file", "a.yaml")).Info("merged")

	if got, want := buf.String(), "level=INFO msg=merged file=a.yaml\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Info("ignored")
	l.With(slog.Int("n", 1)).Error("ignored")

	if l.Enabled(t.Context(), LevelError) {
		t.Error("zero Logger should not be enabled")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero Logger should report defaults")
	}

	var buf bytes.Buffer

	l.Wrap(WithOutput(&buf), WithPretty(false)).Info("wrapped")

	if !strings.Contains(buf.String(), "wrapped") {
		t.Errorf("expected wrapped zero Logger to write, got %q", buf.String())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var (
		mu  sync.Mutex
		buf bytes.Buffer
		wg  sync.WaitGroup
	)

	l := Make(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	}), WithPretty(false))

	for i := range 8 {
		wg.Go(func() {
			l.With(slog.Int("worker", i)).InfoContext(t.Context(), "tick")
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 8 {
		t.Errorf("expected 8 records, got %d", n)
	}
}

func TestPackage_Default(t *testing.T) {
	original := Default()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithPretty(false))

	tests := []struct {
		log   func(string, ...slog.Attr)
		level string
	}{
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
		{Trace, ""},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.log("msg", slog.String("key", "value"))

		if tt.level == "" {
			if buf.Len() != 0 {
				t.Errorf("expected trace filtered, got %q", buf.String())
			}

			continue
		}

		m := record(t, &buf)
		if m["level"] != tt.level || m["key"] != "value" {
			t.Errorf("unexpected record %v", m)
		}
	}

	buf.Reset()
	With(slog.Int("n", 1)).WarnContext(t.Context(), "with")

	if m := record(t, &buf); m["n"] != float64(1) {
		t.Errorf("unexpected record %v", m)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func BenchmarkLogger_Disabled(b *testing.B) {
	l := Make(nil, WithLevel(LevelInfo))

	for b.Loop() {
		l.Trace("statement", slog.Int("index", 1))
	}
}

func BenchmarkLogger_JSON(b *testing.B) {
	l := Make(nil, WithPretty(false))

	for b.Loop() {
		l.Info("statement", slog.Int("index", 1))
	}
}
