package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestInfoFormatsKeyValues(t *testing.T) {
	buf := capture(t)
	Info("plan ready", "events", 12, "notes", 2)

	line := buf.String()
	if !strings.Contains(line, "[INFO] plan ready") {
		t.Errorf("line = %q, missing level/message", line)
	}
	if !strings.Contains(line, "events=12") || !strings.Contains(line, "notes=2") {
		t.Errorf("line = %q, missing key-value pairs", line)
	}
}

func TestErrorPrependsErr(t *testing.T) {
	buf := capture(t)
	Error("fetch failed", errors.New("boom"), "id", "school")

	line := buf.String()
	if !strings.Contains(line, "err=boom") || !strings.Contains(line, "id=school") {
		t.Errorf("line = %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelError)
	Info("hidden")
	Debug("hidden too")
	if buf.Len() != 0 {
		t.Errorf("filtered levels were emitted: %q", buf.String())
	}

	SetLevel(LevelDebug)
	Debug("visible")
	if !strings.Contains(buf.String(), "[DEBUG] visible") {
		t.Errorf("debug line missing: %q", buf.String())
	}
}

func TestOddKeyValueIgnored(t *testing.T) {
	buf := capture(t)
	Info("msg", "key")
	if strings.Contains(buf.String(), "key=") {
		t.Errorf("odd trailing key rendered: %q", buf.String())
	}
}
