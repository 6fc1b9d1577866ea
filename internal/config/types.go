package config

// Config is the on-disk configuration (JSON or YAML).
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	HTTP    HTTPConfig    `json:"http"`
	Logging LoggingConfig `json:"logging"`
	Slicer  SlicerConfig  `json:"slicer"`
	Storage StorageConfig `json:"storage"`
}

// HTTPConfig controls the admin web server.
//
// Defaults (when fields are omitted/zero):
//   - addr: "127.0.0.1:8080"
//   - read_timeout: "10s", write_timeout: "30s", idle_timeout: "60s"
//   - session_lifetime: "10m"
//   - login_rate_per_min: 10, login_burst: 5
type HTTPConfig struct {
	Addr            string `json:"addr"`
	ReadTimeout     string `json:"read_timeout,omitempty"`
	WriteTimeout    string `json:"write_timeout,omitempty"`
	IdleTimeout     string `json:"idle_timeout,omitempty"`
	SessionLifetime string `json:"session_lifetime,omitempty"`
	CookieSecure    bool   `json:"cookie_secure,omitempty"`

	// Login throttling per username. Applied live on reload.
	LoginRatePerMin int `json:"login_rate_per_min,omitempty"`
	LoginBurst      int `json:"login_burst,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SlicerConfig controls the per-haiku slicer scheduler.
type SlicerConfig struct {
	// Overlap is "skip" (default) or "allow". With "skip" a fire is dropped
	// while the previous run of the same haiku is still in flight.
	Overlap string `json:"overlap,omitempty"`

	// Timer timezone. Empty means the process local zone.
	Timezone string `json:"timezone,omitempty"`
}

// StorageConfig controls the persistence layer.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./data/haiku.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}
