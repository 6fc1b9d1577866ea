package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"haikuadmin/internal/game"
	"haikuadmin/internal/slicer"
	"haikuadmin/internal/storage"
	logx "haikuadmin/pkg/logx"
)

// Store is the persistence the admin routes need.
type Store interface {
	game.AdminLookup
	game.HaikuLookup

	AdministratorExists(ctx context.Context) (bool, error)
	AdminByID(ctx context.Context, id int64) (game.Admin, bool, error)
	CreateAdmin(ctx context.Context, a *game.Admin) error

	CreateHaiku(ctx context.Context, h *game.Haiku) error
	HaikuByID(ctx context.Context, id int64) (game.Haiku, bool, error)
	ListHaikus(ctx context.Context) ([]game.Haiku, error)
	DeleteHaiku(ctx context.Context, id int64) (bool, error)
	SliceCounts(ctx context.Context) (map[int64]int64, error)

	AppendAudit(ctx context.Context, e storage.AuditEntry) error
	RecentAudit(ctx context.Context, limit int) ([]storage.AuditEntry, error)
}

// Slicers is the slicer scheduler as seen by the routes.
type Slicers interface {
	Start(ctx context.Context, inst slicer.Instance, fn slicer.Func) (slicer.Job, bool, error)
	Stop(ctx context.Context, inst slicer.Instance) (bool, error)
	Exists(ctx context.Context, inst slicer.Instance) (bool, error)
	Snapshot() slicer.Snapshot
}

type Deps struct {
	Store   Store
	Slicers Slicers

	// SliceFunc builds the callback run on every fire of a haiku's slicer.
	SliceFunc func(h game.Haiku) slicer.Func

	// Health adds optional detail to /healthz.
	Health func() any
}

type Server struct {
	cfg  Config
	deps Deps
	log  logx.Logger

	sessions *sessionStore
	limiter  *loginLimiter
	pages    *pages
	router   chi.Router
}

func New(cfg Config, deps Deps, log logx.Logger) (*Server, error) {
	if deps.Store == nil || deps.Slicers == nil || deps.SliceFunc == nil {
		return nil, errors.New("web: store, slicers and slice func are required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg = cfg.withDefaults()
	pg, err := loadPages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		deps:     deps,
		log:      log,
		sessions: newSessionStore(cfg.SessionLifetime, cfg.CookieSecure),
		limiter:  newLoginLimiter(cfg.LoginRatePerMin, cfg.LoginBurst),
		pages:    pg,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

// SetLoginRate applies new login throttling limits to live traffic.
func (s *Server) SetLoginRate(perMin, burst int) {
	s.limiter.SetRate(perMin, burst)
	s.log.Info("login rate updated", logx.Int("per_min", perMin), logx.Int("burst", burst))
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) { redirect(w, r, "/admin") })

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.sessions.middleware)

		r.Get("/logout", s.handleLogout)

		r.With(s.requiresNoAdmin).Get("/register", s.handleRegisterForm)
		r.With(s.requiresNoAdmin).Post("/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requiresAdmin, s.requiresAdminNoLogin)
			r.Get("/login", s.handleLoginForm)
			r.Post("/login", s.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requiresAdmin, s.requiresAdminLogin)
			r.Get("/", s.handleBrowse)
			r.Get("/new", s.handleNewForm)
			r.Post("/new", s.handleNew)
			r.Get("/slicers", s.handleSlicers)
			r.Post("/haiku/{slug}/start", s.handleStart)
			r.Post("/haiku/{slug}/stop", s.handleStop)
			r.Post("/haiku/{slug}/delete", s.handleDelete)
		})
	})
	return r
}

// accessLog writes one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.Int("status", ww.Status()),
			logx.Int("bytes", ww.BytesWritten()),
			logx.Duration("took", time.Since(start)),
			logx.String("remote", r.RemoteAddr),
			logx.String("req_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("http server listening", logx.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(sctx)
	<-errCh
	s.log.Info("http server stopped")
	return err
}

// Janitor drops expired sessions and idle login limiters until ctx is done.
func (s *Server) Janitor(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.sweep(); n > 0 {
				s.log.Debug("expired sessions dropped", logx.Int("count", n))
			}
			s.limiter.prune(10 * time.Minute)
		}
	}
}
