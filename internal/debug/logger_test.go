package debug

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogWritesJSONWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("debug")
	defer SetOutput(io.Discard)

	if !Enabled() {
		t.Fatal("expected debug logging to be enabled")
	}

	Log("zoom changed to %d", 15)

	out := buf.String()
	if !strings.Contains(out, `"message":"zoom changed to 15"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if !strings.Contains(out, `"level":"debug"`) {
		t.Fatalf("expected debug level in output: %s", out)
	}
}

func TestLogSilentAboveDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")
	defer SetOutput(io.Discard)

	if Enabled() {
		t.Fatal("debug should be disabled at warn level")
	}
	Log("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	Logger().Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn message missing: %q", buf.String())
	}
}

func TestDiscardByDefault(t *testing.T) {
	SetOutput(io.Discard)
	if Enabled() {
		t.Fatal("discard output should report disabled")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
