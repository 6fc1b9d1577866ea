package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Config selects the sinks and level of a Service.
type Config struct {
	Level   string
	Console bool
	File    FileConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

const defaultLogPath = "./data/haikuadmin.log"

// Service owns the process sinks. Loggers obtained from it pick up sink and
// level changes made by Apply without being rebuilt.
type Service struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	level   Level

	root atomic.Pointer[zerolog.Logger]
}

// New builds a Service writing the console sink to stdout and applies cfg.
// A file sink that cannot be opened is reported on stderr and skipped.
func New(cfg Config) (*Service, Logger) {
	s := newService(os.Stdout)
	if err := s.Apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "logx: %v\n", err)
	}
	return s, Logger{svc: s}
}

func newService(console io.Writer) *Service {
	setGlobals()
	s := &Service{console: console}
	zl := zerolog.New(newConsoleWriter(console)).With().Timestamp().Logger()
	s.root.Store(&zl)
	return s
}

func (s *Service) current() zerolog.Logger {
	if zl := s.root.Load(); zl != nil {
		return *zl
	}
	return zerolog.Nop()
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

// Level is the level set by the last Apply.
func (s *Service) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Apply swaps sinks and level. On error the console sink (and the level)
// still take effect.
func (s *Service) Apply(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
	s.level = ParseLevel(cfg.Level)

	var (
		writers []io.Writer
		ferr    error
	)
	if cfg.Console {
		writers = append(writers, newConsoleWriter(s.console))
	}
	if cfg.File.Enabled {
		f, err := openLogFile(cfg.File.Path)
		if err != nil {
			ferr = err
		} else {
			s.file = f
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}
	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(s.console))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(s.level).With().Timestamp().Logger()
	s.root.Store(&zl)
	return ferr
}

func (s *Service) Close() error {
	s.mu.Lock()
	f := s.file
	s.file = nil
	s.mu.Unlock()

	if f != nil {
		return f.Close()
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log dir %q: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log file %q: %w", path, err)
	}
	return f, nil
}
