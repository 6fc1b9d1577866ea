package app

import (
	"fmt"
	"strings"
	"time"

	"haikuadmin/internal/config"
	"haikuadmin/internal/slicer"
	"haikuadmin/internal/storage"
	"haikuadmin/internal/web"
	logx "haikuadmin/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	sc := cfg.Storage
	path := strings.TrimSpace(sc.Path)
	if path == "" {
		return storage.Config{}, fmt.Errorf("storage.path is required")
	}
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, 5*time.Second)
	if err != nil {
		return storage.Config{}, err
	}
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" {
		driver = "sqlite"
	}
	return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, nil
}

func mapSlicerConfig(cfg *config.Config) (slicer.Config, error) {
	out := slicer.Config{Overlap: slicer.OverlapSkipIfRunning}
	switch strings.ToLower(strings.TrimSpace(cfg.Slicer.Overlap)) {
	case "", "skip":
	case "allow":
		out.Overlap = slicer.OverlapAllow
	default:
		return slicer.Config{}, fmt.Errorf("slicer.overlap: unknown policy %q", cfg.Slicer.Overlap)
	}
	if tz := strings.TrimSpace(cfg.Slicer.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return slicer.Config{}, fmt.Errorf("slicer.timezone: invalid %q: %w", tz, err)
		}
		out.Location = loc
	}
	return out, nil
}

func mapHTTPConfig(cfg *config.Config) (web.Config, error) {
	h := cfg.HTTP
	var (
		out web.Config
		err error
	)
	out.Addr = strings.TrimSpace(h.Addr)
	if out.Addr == "" {
		out.Addr = config.DefaultAddr
	}
	if out.ReadTimeout, err = config.ParseDurationOrDefault("http.read_timeout", h.ReadTimeout, config.DefaultReadTimeout); err != nil {
		return web.Config{}, err
	}
	if out.WriteTimeout, err = config.ParseDurationOrDefault("http.write_timeout", h.WriteTimeout, config.DefaultWriteTimeout); err != nil {
		return web.Config{}, err
	}
	if out.IdleTimeout, err = config.ParseDurationOrDefault("http.idle_timeout", h.IdleTimeout, config.DefaultIdleTimeout); err != nil {
		return web.Config{}, err
	}
	if out.SessionLifetime, err = config.ParseDurationOrDefault("http.session_lifetime", h.SessionLifetime, config.DefaultSessionLifetime); err != nil {
		return web.Config{}, err
	}
	out.CookieSecure = h.CookieSecure
	out.LoginRatePerMin, out.LoginBurst = loginRate(cfg)
	return out, nil
}

func loginRate(cfg *config.Config) (perMin, burst int) {
	perMin, burst = cfg.HTTP.LoginRatePerMin, cfg.HTTP.LoginBurst
	if perMin == 0 {
		perMin = config.DefaultLoginRatePerMin
	}
	if burst == 0 {
		burst = config.DefaultLoginBurst
	}
	return perMin, burst
}
