package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "debug").With(String("comp", "slicer"))

	log.Info("job started", String("key", "alice7"), Int("interval", 5), Err(errors.New("boom")))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if m["message"] != "job started" {
		t.Fatalf("message = %v", m["message"])
	}
	if m["comp"] != "slicer" || m["key"] != "alice7" {
		t.Fatalf("missing fields: %v", m)
	}
	if m["interval"] != float64(5) {
		t.Fatalf("interval = %v", m["interval"])
	}
	if _, ok := m["caller"]; !ok {
		t.Fatalf("expected caller field: %v", m)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "warn")

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	if log.Enabled(LevelDebug) {
		t.Fatal("debug should not be enabled at warn level")
	}
	log.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn should be written")
	}

	var tbuf bytes.Buffer
	trace := NewJSON(&tbuf, "trace")
	if !trace.Enabled(LevelTrace) {
		t.Fatal("trace should be enabled at trace level")
	}
	trace.Trace("cron wake", String("key", "alice7"))
	if !bytes.Contains(tbuf.Bytes(), []byte(`"level":"trace"`)) {
		t.Fatalf("trace line not written: %q", tbuf.String())
	}

	tbuf.Reset()
	NewJSON(&tbuf, "debug").Trace("hidden")
	if tbuf.Len() != 0 {
		t.Fatalf("trace should be filtered at debug level, got %q", tbuf.String())
	}
}

func TestZeroLoggerIsSafe(t *testing.T) {
	var log Logger
	if !log.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	log.Info("nothing happens")
	if Nop().IsZero() {
		t.Fatal("Nop logger is not the zero value")
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("warning"); got != LevelWarn {
		t.Fatalf("ParseLevel(warning) = %v", got)
	}
	if got := ParseLevel("trace"); got != LevelTrace {
		t.Fatalf("ParseLevel(trace) = %v", got)
	}
	if got := ParseLevel("bogus"); got != LevelInfo {
		t.Fatalf("ParseLevel(bogus) = %v", got)
	}
}

func TestServiceApplyFileSink(t *testing.T) {
	var console bytes.Buffer
	s := newService(&console)
	defer s.Close()
	log := s.Logger().With(String("comp", "test"))

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	if err := s.Apply(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	log.Debug("filtered")
	log.Info("to file", Int("n", 1))

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("file lines = %d (%q)", len(lines), b)
	}
	var m map[string]any
	if err := json.Unmarshal(lines[0], &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["message"] != "to file" || m["comp"] != "test" {
		t.Fatalf("file entry = %v", m)
	}
	if console.Len() != 0 {
		t.Fatalf("console sink should be off, got %q", console.String())
	}

	// Switching back to console raises nothing and follows the new level.
	if err := s.Apply(Config{Level: "warn", Console: true}); err != nil {
		t.Fatalf("Apply console: %v", err)
	}
	if s.Level() != LevelWarn {
		t.Fatalf("Level = %v", s.Level())
	}
	log.Info("dropped")
	log.Warn("shown")
	if !bytes.Contains(console.Bytes(), []byte("shown")) || bytes.Contains(console.Bytes(), []byte("dropped")) {
		t.Fatalf("console = %q", console.String())
	}
}
