package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"haikuadmin/internal/config"
	"haikuadmin/internal/game"
	"haikuadmin/internal/slicer"
	logx "haikuadmin/pkg/logx"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := `
http:
  addr: "127.0.0.1:0"
  session_lifetime: 5m
logging:
  level: error
  console: false
slicer:
  overlap: skip
storage:
  driver: sqlite
  path: ` + filepath.Join(dir, "haiku.db") + `
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestMapConfig(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Slicer:  config.SlicerConfig{Overlap: "allow", Timezone: "UTC"},
		Storage: config.StorageConfig{Path: "x.db"},
	}

	sc, err := mapSlicerConfig(cfg)
	if err != nil || sc.Overlap != slicer.OverlapAllow || sc.Location != time.UTC {
		t.Fatalf("mapSlicerConfig = (%+v, %v)", sc, err)
	}
	cfg.Slicer.Overlap = "queue"
	if _, err := mapSlicerConfig(cfg); err == nil {
		t.Fatal("unknown overlap accepted")
	}

	hc, err := mapHTTPConfig(cfg)
	if err != nil {
		t.Fatalf("mapHTTPConfig: %v", err)
	}
	if hc.Addr != config.DefaultAddr || hc.SessionLifetime != 10*time.Minute ||
		hc.LoginRatePerMin != config.DefaultLoginRatePerMin || hc.LoginBurst != config.DefaultLoginBurst {
		t.Fatalf("http defaults = %+v", hc)
	}
	cfg.HTTP.ReadTimeout = "later"
	if _, err := mapHTTPConfig(cfg); err == nil || !strings.Contains(err.Error(), "http.read_timeout") {
		t.Fatalf("bad duration err = %v", err)
	}

	st, err := mapStorageConfig(cfg)
	if err != nil || st.Driver != "sqlite" || st.BusyTimeout != 5*time.Second {
		t.Fatalf("mapStorageConfig = (%+v, %v)", st, err)
	}
	if _, err := mapStorageConfig(&config.Config{}); err == nil {
		t.Fatal("missing storage path accepted")
	}
}

func TestCreateAdministrator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := writeConfig(t)

	a, err := CreateAdministrator(ctx, path, "username", "password", logx.Nop())
	if err != nil || a.ID == 0 || !a.IsAdmin {
		t.Fatalf("CreateAdministrator = (%+v, %v)", a, err)
	}
	_, err = CreateAdministrator(ctx, path, "username", "password", logx.Nop())
	if err == nil || !strings.Contains(err.Error(), game.MsgUsernameTaken) {
		t.Fatalf("duplicate admin err = %v", err)
	}
	if _, err := CreateAdministrator(ctx, path, "other", "", logx.Nop()); err == nil {
		t.Fatal("empty password accepted")
	}
}

func TestSliceFuncRecordsTick(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, err := NewApp(writeConfig(t))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer a.Stop(ctx, StopAppStop)

	admin, _ := game.NewAdmin("username", "password")
	if err := a.store.CreateAdmin(ctx, &admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	h, _ := game.NewHaiku(admin.ID, game.HaikuForm{
		Title: "Spring", Slug: "spring", WordRoundLength: "1", SlicingInterval: "5",
		MinBlindSubmissions: "1", BlindSubmissionValue: "1", DecayHalfLife: "1", SeedCapital: "1",
	})
	if err := a.store.CreateHaiku(ctx, &h); err != nil {
		t.Fatalf("CreateHaiku: %v", err)
	}

	fn := a.sliceFunc(h)
	fn()
	fn()
	if n, _ := a.store.SliceCount(ctx, h.ID); n != 2 {
		t.Fatalf("SliceCount = %d, want 2", n)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	path := writeConfig(t)
	if _, err := CreateAdministrator(context.Background(), path, "username", "password", logx.Nop()); err != nil {
		t.Fatalf("CreateAdministrator: %v", err)
	}

	a, err := NewApp(path)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	client := &http.Client{
		Timeout:       2 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Get("http://" + a.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = client.Get("http://" + a.Addr() + "/admin")
	if err != nil {
		t.Fatalf("GET /admin: %v", err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("Location"); resp.StatusCode != http.StatusSeeOther || loc != "/admin/login" {
		t.Fatalf("GET /admin = %d %q", resp.StatusCode, loc)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx, StopAppStop); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-a.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
	if err := a.Err(); err != nil {
		t.Fatalf("Err after clean stop = %v", err)
	}
}
