package config

import (
	"sort"
	"strings"

	logx "haikuadmin/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections,
// (2) safe structured attrs for logging (never includes file paths or other
// local details beyond "set" flags), and (3) the changed sections that only
// take effect after a restart.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	restart := make([]string, 0, 3)
	attrs := make([]logx.Field, 0, 16)
	trim := strings.TrimSpace

	// HTTP: only the login limiter is applied live.
	oh, nh := oldCfg.HTTP, newCfg.HTTP
	httpStatic := trim(oh.Addr) != trim(nh.Addr) ||
		trim(oh.ReadTimeout) != trim(nh.ReadTimeout) ||
		trim(oh.WriteTimeout) != trim(nh.WriteTimeout) ||
		trim(oh.IdleTimeout) != trim(nh.IdleTimeout) ||
		trim(oh.SessionLifetime) != trim(nh.SessionLifetime) ||
		oh.CookieSecure != nh.CookieSecure
	httpLive := oh.LoginRatePerMin != nh.LoginRatePerMin || oh.LoginBurst != nh.LoginBurst
	if httpStatic || httpLive {
		changed = append(changed, "http")
		attrs = append(attrs,
			logx.String("http.addr", trim(nh.Addr)),
			logx.String("http.session_lifetime", trim(nh.SessionLifetime)),
			logx.Bool("http.cookie_secure", nh.CookieSecure),
			logx.Int("http.login_rate_per_min", nh.LoginRatePerMin),
			logx.Int("http.login_burst", nh.LoginBurst),
		)
		if httpStatic {
			restart = append(restart, "http")
		}
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if trim(oldCfg.Slicer.Overlap) != trim(newCfg.Slicer.Overlap) ||
		trim(oldCfg.Slicer.Timezone) != trim(newCfg.Slicer.Timezone) {
		changed = append(changed, "slicer")
		restart = append(restart, "slicer")
		attrs = append(attrs,
			logx.String("slicer.overlap", trim(newCfg.Slicer.Overlap)),
			logx.String("slicer.timezone", trim(newCfg.Slicer.Timezone)),
		)
	}

	ost, nst := oldCfg.Storage, newCfg.Storage
	if trim(ost.Driver) != trim(nst.Driver) || trim(ost.Path) != trim(nst.Path) || trim(ost.BusyTimeout) != trim(nst.BusyTimeout) {
		changed = append(changed, "storage")
		restart = append(restart, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", trim(nst.Driver)),
			logx.Bool("storage.path_set", trim(nst.Path) != ""),
			logx.String("storage.busy_timeout", trim(nst.BusyTimeout)),
		)
	}

	sort.Strings(changed)
	sort.Strings(restart)
	return changed, attrs, restart
}
