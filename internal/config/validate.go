package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultSessionLifetime = 10 * time.Minute
	DefaultLoginRatePerMin = 10
	DefaultLoginBurst      = 5
)

// Validate checks every field that would otherwise fail later during startup
// or reload. Errors carry the dotted config path.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	for _, f := range []struct{ path, raw string }{
		{"http.read_timeout", cfg.HTTP.ReadTimeout},
		{"http.write_timeout", cfg.HTTP.WriteTimeout},
		{"http.idle_timeout", cfg.HTTP.IdleTimeout},
		{"http.session_lifetime", cfg.HTTP.SessionLifetime},
		{"storage.busy_timeout", cfg.Storage.BusyTimeout},
	} {
		_, err := ParseDurationField(f.path, f.raw)
		add(err)
	}
	if cfg.HTTP.LoginRatePerMin < 0 {
		add(fmt.Errorf("http.login_rate_per_min: must be >= 0"))
	}
	if cfg.HTTP.LoginBurst < 0 {
		add(fmt.Errorf("http.login_burst: must be >= 0"))
	}

	if lvl := strings.ToLower(strings.TrimSpace(cfg.Logging.Level)); lvl != "" {
		switch lvl {
		case "trace", "debug", "info", "warn", "warning", "error":
		default:
			add(fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
		}
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		add(errors.New("logging.file.path: required when file logging is enabled"))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Slicer.Overlap)) {
	case "", "skip", "allow":
	default:
		add(fmt.Errorf("slicer.overlap: must be \"skip\" or \"allow\", got %q", cfg.Slicer.Overlap))
	}
	if tz := strings.TrimSpace(cfg.Slicer.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			add(fmt.Errorf("slicer.timezone: %w", err))
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", "sqlite", "sqlite3":
	default:
		add(fmt.Errorf("storage.driver: unknown driver %q", cfg.Storage.Driver))
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		add(errors.New("storage.path: required"))
	}

	return errors.Join(errs...)
}
