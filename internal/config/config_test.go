package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

const jsonCfg = `{
  "http": {"addr": "127.0.0.1:9090", "session_lifetime": "15m", "login_rate_per_min": 6},
  "logging": {"level": "debug", "console": true, "file": {"enabled": false, "path": ""}},
  "slicer": {"overlap": "skip", "timezone": "UTC"},
  "storage": {"driver": "sqlite", "path": "./data/haiku.db", "busy_timeout": "2s"}
}`

const yamlCfg = `
http:
  addr: "127.0.0.1:9090"
  session_lifetime: 15m
logging:
  level: info
  console: true
slicer:
  overlap: allow
storage:
  driver: sqlite
  path: ./data/haiku.db
`

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	m := NewConfigManager(writeFile(t, "config.json", jsonCfg))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9090" || cfg.HTTP.LoginRatePerMin != 6 || cfg.Slicer.Timezone != "UTC" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if m.Get() != cfg {
		t.Fatal("Get did not return the committed config")
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	cfg, err := NewConfigManager(writeFile(t, "config.yaml", yamlCfg)).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Slicer.Overlap != "allow" || cfg.HTTP.SessionLifetime != "15m" || cfg.Storage.Path != "./data/haiku.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	for name, body := range map[string]string{
		"config.json": `{"http": {"addr": ":1", "port": 1}, "storage": {"path": "x"}}`,
		"config.yml":  "storage:\n  path: x\n  user: root\n",
	} {
		if _, err := NewConfigManager(writeFile(t, name, body)).Parse(); err == nil {
			t.Fatalf("%s: expected unknown field error", name)
		}
	}
	if _, err := NewConfigManager(writeFile(t, "trail.json", `{} {}`)).Parse(); err == nil {
		t.Fatal("expected trailing data error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		HTTP:    HTTPConfig{ReadTimeout: "soon", LoginBurst: -1},
		Logging: LoggingConfig{Level: "loud", File: LoggingFile{Enabled: true}},
		Slicer:  SlicerConfig{Overlap: "queue", Timezone: "Nowhere/Atlantis"},
		Storage: StorageConfig{Driver: "file"},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, path := range []string{
		"http.read_timeout", "http.login_burst", "logging.level", "logging.file.path",
		"slicer.overlap", "slicer.timezone", "storage.driver", "storage.path",
	} {
		if !strings.Contains(err.Error(), path) {
			t.Fatalf("error %q does not mention %s", err, path)
		}
	}

	if err := Validate(&Config{Storage: StorageConfig{Path: "x.db"}}); err != nil {
		t.Fatalf("minimal config rejected: %v", err)
	}
}

func TestDurations(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty = (%v, %v)", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("negative duration accepted")
	}
	if d, _ := ParseDurationOrDefault("x", "", 10*time.Minute); d != 10*time.Minute {
		t.Fatalf("default = %v", d)
	}
	if d, _ := ParseDurationOrDefault("x", "90s", time.Minute); d != 90*time.Second {
		t.Fatalf("parsed = %v", d)
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	a := &Config{HTTP: HTTPConfig{Addr: ":1", LoginRatePerMin: 5}, Logging: LoggingConfig{Level: "info"}}

	b := *a
	b.HTTP.LoginRatePerMin = 20
	b.Logging.Level = "debug"
	changed, attrs, restart := SummarizeConfigChange(a, &b)
	if strings.Join(changed, ",") != "http,logging" || len(restart) != 0 || len(attrs) == 0 {
		t.Fatalf("live change = (%v, %d attrs, %v)", changed, len(attrs), restart)
	}

	c := *a
	c.HTTP.Addr = ":2"
	c.Slicer.Overlap = "allow"
	_, _, restart = SummarizeConfigChange(a, &c)
	if strings.Join(restart, ",") != "http,slicer" {
		t.Fatalf("restart sections = %v", restart)
	}

	if changed, _, _ := SummarizeConfigChange(a, a); len(changed) != 0 {
		t.Fatalf("no-op change = %v", changed)
	}
}

func TestWatchPublishesChanges(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.json", jsonCfg)
	m := NewConfigManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()

	updated := strings.Replace(jsonCfg, `"level": "debug"`, `"level": "warn"`, 1)
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-ch:
			if cfg.Logging.Level != "warn" {
				t.Fatalf("published level = %q", cfg.Logging.Level)
			}
			cancel()
			<-done
			return
		case <-tick.C:
			// Rewrite until the watcher has been set up and sees the change.
			if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
				t.Fatalf("rewrite: %v", err)
			}
		case <-deadline:
			t.Fatal("no config published")
		}
	}
}
