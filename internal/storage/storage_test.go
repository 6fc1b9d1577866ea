package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"haikuadmin/internal/game"
	"haikuadmin/internal/slicer"
	logx "haikuadmin/pkg/logx"
)

var _ slicer.OwnerDirectory = (*Store)(nil)
var _ game.AdminLookup = (*Store)(nil)
var _ game.HaikuLookup = (*Store)(nil)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "db", "haiku.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedAdmin(t *testing.T, st *Store, name string) game.Admin {
	t.Helper()
	a, err := game.NewAdmin(name, "password")
	if err != nil {
		t.Fatalf("NewAdmin: %v", err)
	}
	if err := st.CreateAdmin(context.Background(), &a); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return a
}

func seedHaiku(t *testing.T, st *Store, owner int64, slug string) game.Haiku {
	t.Helper()
	h, err := game.NewHaiku(owner, game.HaikuForm{
		Title: "Title " + slug, Slug: slug, WordRoundLength: "1000", SlicingInterval: "7",
		MinBlindSubmissions: "100", BlindSubmissionValue: "30", DecayHalfLife: "1000", SeedCapital: "1000",
	})
	if err != nil {
		t.Fatalf("NewHaiku: %v", err)
	}
	if err := st.CreateHaiku(context.Background(), &h); err != nil {
		t.Fatalf("CreateHaiku: %v", err)
	}
	return h
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "x")}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := Open(Config{Driver: "sqlite"}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAdmins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTest(t)

	exists, err := st.AdministratorExists(ctx)
	if err != nil || exists {
		t.Fatalf("AdministratorExists on empty db = (%v, %v)", exists, err)
	}

	a := seedAdmin(t, st, "alice")
	if a.ID == 0 {
		t.Fatal("CreateAdmin did not set ID")
	}
	if exists, _ := st.AdministratorExists(ctx); !exists {
		t.Fatal("AdministratorExists = false after create")
	}

	dup, _ := game.NewAdmin("alice", "other")
	if err := st.CreateAdmin(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate CreateAdmin err = %v, want ErrDuplicate", err)
	}

	got, ok, err := st.AdminByName(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("AdminByName = (%v, %v)", ok, err)
	}
	if got.ID != a.ID || !got.IsAdmin || !got.CheckPassword("password") {
		t.Fatalf("AdminByName returned %+v", got)
	}
	if _, ok, _ := st.AdminByName(ctx, "bob"); ok {
		t.Fatal("AdminByName found a missing admin")
	}

	if isAdmin, err := st.IsAdmin(ctx, a.ID); err != nil || !isAdmin {
		t.Fatalf("IsAdmin(%d) = (%v, %v)", a.ID, isAdmin, err)
	}
	if isAdmin, err := st.IsAdmin(ctx, 999); err != nil || isAdmin {
		t.Fatalf("IsAdmin(999) = (%v, %v)", isAdmin, err)
	}

	name, err := st.OwnerName(ctx, a.ID)
	if err != nil || name != "alice" {
		t.Fatalf("OwnerName = (%q, %v)", name, err)
	}
	if _, err := st.OwnerName(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("OwnerName(999) err = %v, want ErrNotFound", err)
	}
}

func TestHaikusAndSlices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTest(t)
	a := seedAdmin(t, st, "alice")

	first := seedHaiku(t, st, a.ID, "first")
	second := seedHaiku(t, st, a.ID, "second")

	dup := first
	dup.ID = 0
	if err := st.CreateHaiku(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate CreateHaiku err = %v, want ErrDuplicate", err)
	}

	got, ok, err := st.HaikuBySlug(ctx, "first")
	if err != nil || !ok {
		t.Fatalf("HaikuBySlug = (%v, %v)", ok, err)
	}
	if got.ID != first.ID || got.SlicingInterval != 7 || got.DecayMeanLifetime != first.DecayMeanLifetime {
		t.Fatalf("HaikuBySlug returned %+v", got)
	}
	if _, ok, _ := st.HaikuByTitle(ctx, "Title second"); !ok {
		t.Fatal("HaikuByTitle did not find second")
	}
	if _, ok, _ := st.HaikuByID(ctx, second.ID); !ok {
		t.Fatal("HaikuByID did not find second")
	}

	list, err := st.ListHaikus(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListHaikus = (%d, %v)", len(list), err)
	}

	now := time.Now()
	for i := 0; i < 3; i++ {
		if err := st.RecordSlice(ctx, first.ID, now); err != nil {
			t.Fatalf("RecordSlice: %v", err)
		}
	}
	if n, _ := st.SliceCount(ctx, first.ID); n != 3 {
		t.Fatalf("SliceCount = %d, want 3", n)
	}
	counts, err := st.SliceCounts(ctx)
	if err != nil || counts[first.ID] != 3 || counts[second.ID] != 0 {
		t.Fatalf("SliceCounts = (%v, %v)", counts, err)
	}

	deleted, err := st.DeleteHaiku(ctx, first.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteHaiku = (%v, %v)", deleted, err)
	}
	if n, _ := st.SliceCount(ctx, first.ID); n != 0 {
		t.Fatalf("slices survived delete: %d", n)
	}
	if deleted, _ := st.DeleteHaiku(ctx, first.ID); deleted {
		t.Fatal("second DeleteHaiku reported a deletion")
	}
}

func TestAuditAndClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTest(t)

	for _, action := range []string{"login", "start"} {
		if err := st.AppendAudit(ctx, AuditEntry{ActorID: 1, ActorName: "alice", Action: action, Target: "first", OK: true}); err != nil {
			t.Fatalf("AppendAudit: %v", err)
		}
	}
	entries, err := st.RecentAudit(ctx, 10)
	if err != nil || len(entries) != 2 {
		t.Fatalf("RecentAudit = (%d, %v)", len(entries), err)
	}
	if entries[0].Action != "start" || !entries[0].OK || entries[0].At.IsZero() {
		t.Fatalf("newest entry = %+v", entries[0])
	}

	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := st.AppendAudit(ctx, AuditEntry{Action: "x"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("AppendAudit after Close err = %v, want ErrClosed", err)
	}
}
