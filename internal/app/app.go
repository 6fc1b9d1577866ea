package app

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"haikuadmin/internal/config"
	"haikuadmin/internal/eventbus"
	"haikuadmin/internal/game"
	"haikuadmin/internal/runtime/supervisor"
	"haikuadmin/internal/slicer"
	"haikuadmin/internal/storage"
	"haikuadmin/internal/web"
	logx "haikuadmin/pkg/logx"
)

type App struct {
	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	store  *storage.Store
	sched  *slicer.Scheduler
	web    *web.Server
	webCfg web.Config

	ln net.Listener
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg))
	appLog := log.With(logx.String("comp", "app"))

	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	slc, err := mapSlicerConfig(cfg)
	if err != nil {
		return nil, err
	}
	wc, err := mapHTTPConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	appLog.Info("storage opened", logx.String("driver", sc.Driver))

	bus := eventbus.New()
	sched := slicer.New(slc, store, log.With(logx.String("comp", "slicer")), bus)

	a := &App{
		cfgm:   cfgm,
		log:    appLog,
		logs:   logSvc,
		bus:    bus,
		store:  store,
		sched:  sched,
		webCfg: wc,
	}
	a.web, err = web.New(wc, web.Deps{
		Store:     store,
		Slicers:   sched,
		SliceFunc: a.sliceFunc,
		Health:    a.health,
	}, log.With(logx.String("comp", "web")))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Addr is the address the HTTP server listens on, once started.
func (a *App) Addr() string {
	if a.ln == nil {
		return ""
	}
	return a.ln.Addr().String()
}

func (a *App) health() any {
	if a.sup == nil {
		return nil
	}
	return a.sup.Snapshot()
}

func (a *App) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.webCfg.Addr)
	if err != nil {
		return err
	}
	a.ln = ln

	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))

	a.sched.Run()

	a.sup.Go("http.serve", func(c context.Context) error { return a.web.Serve(c, ln) })
	a.sup.Go0("http.janitor", a.web.Janitor)

	events, unsub := a.bus.Subscribe(128, "slicer.")
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				// Debug level: fired events arrive every few seconds per running haiku.
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time), logx.Any("data", e.Data))
			}
		}
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyConfig(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.GoRestart("config.watch", 500*time.Millisecond, 30*time.Second, a.cfgm.Watch)

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("systemd notify failed", logx.Err(err))
	} else if ok {
		a.log.Debug("systemd notified ready")
	}
	a.log.Info("app started", logx.String("addr", a.Addr()))
	return nil
}

// applyConfig applies the live-reloadable parts of newCfg. Sections that need
// a restart are only reported.
func (a *App) applyConfig(prev, newCfg *config.Config) {
	sections, attrs, restart := config.SummarizeConfigChange(prev, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	if err := a.logs.Apply(mapLogConfig(newCfg)); err != nil {
		a.log.Warn("logging reload incomplete", logx.Err(err))
	}
	perMin, burst := loginRate(newCfg)
	a.web.SetLoginRate(perMin, burst)

	if len(restart) > 0 {
		a.log.Warn("config changed; restart required for changes to take effect",
			logx.String("sections", strings.Join(restart, ",")))
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

// sliceFunc is the callback run on every fire of a haiku's slicer. It records
// one slice tick for the haiku.
func (a *App) sliceFunc(h game.Haiku) slicer.Func {
	id, slug := h.ID, h.Slug
	timeout := time.Duration(h.SlicingInterval) * time.Second
	return func() {
		parent := context.Background()
		if a.sup != nil {
			parent = a.sup.Context()
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		if err := a.store.RecordSlice(ctx, id, time.Now()); err != nil {
			a.log.Warn("slice record failed", logx.String("slug", slug), logx.Err(err))
			return
		}
		a.log.Trace("slice recorded", logx.String("slug", slug))
	}
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		// Never started: only the store is open.
		return a.store.Close()
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	// Cancel first so background loops start unwinding immediately.
	a.sup.Cancel()

	a.step(ctx, "slicer", 3*time.Second, a.sched.Close)
	a.step(ctx, "supervisor", 6*time.Second, a.sup.Wait)
	a.step(ctx, "storage", time.Second, func(context.Context) error { return a.store.Close() })

	a.log.Info("stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return nil
}
