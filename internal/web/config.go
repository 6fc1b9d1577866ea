package web

import "time"

// Config is the resolved HTTP configuration.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	SessionLifetime time.Duration
	CookieSecure    bool

	LoginRatePerMin int // <= 0 disables throttling
	LoginBurst      int
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8080"
	}
	if c.SessionLifetime <= 0 {
		c.SessionLifetime = 10 * time.Minute
	}
	if c.LoginBurst <= 0 {
		c.LoginBurst = 1
	}
	return c
}
