package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"haikuadmin/internal/game"
	"haikuadmin/internal/storage"
	logx "haikuadmin/pkg/logx"
)

type browseRow struct {
	Haiku   game.Haiku
	Running bool
	Slices  int64
}

type browseData struct {
	Rows  []browseRow
	Audit []storage.AuditEntry
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	haikus, err := s.deps.Store.ListHaikus(ctx)
	if err != nil {
		s.internalError(w, r, "list haikus failed", err)
		return
	}
	counts, err := s.deps.Store.SliceCounts(ctx)
	if err != nil {
		s.internalError(w, r, "slice counts failed", err)
		return
	}

	data := browseData{Rows: make([]browseRow, 0, len(haikus))}
	for _, h := range haikus {
		running, err := s.deps.Slicers.Exists(ctx, h.Instance())
		if err != nil {
			s.log.Warn("slicer lookup failed", logx.String("slug", h.Slug), logx.Err(err))
		}
		data.Rows = append(data.Rows, browseRow{Haiku: h, Running: running, Slices: counts[h.ID]})
	}
	if data.Audit, err = s.deps.Store.RecentAudit(ctx, 15); err != nil {
		s.log.Warn("recent audit failed", logx.Err(err))
	}
	s.renderPage(w, r, http.StatusOK, "browse", view{Title: "Haikus", Data: data})
}

type formField struct {
	Name  string
	Label string
}

var haikuFields = []formField{
	{game.FieldTitle, "Title"},
	{game.FieldSlug, "URL slug"},
	{game.FieldWordRoundLength, "Word round length"},
	{game.FieldSlicingInterval, "Slicing interval (seconds)"},
	{game.FieldMinBlindSubmissions, "Minimum blind submissions"},
	{game.FieldBlindSubmissionValue, "Blind submission value"},
	{game.FieldDecayHalfLife, "Decay half-life"},
	{game.FieldSeedCapital, "Seed capital"},
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "new", view{Title: "New haiku", Data: haikuFields})
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admin, _ := currentAdmin(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := map[string]string{}
	for _, f := range haikuFields {
		form[f.Name] = r.PostForm.Get(f.Name)
	}
	hf := game.HaikuForm{
		Title:                form[game.FieldTitle],
		Slug:                 form[game.FieldSlug],
		WordRoundLength:      form[game.FieldWordRoundLength],
		SlicingInterval:      form[game.FieldSlicingInterval],
		MinBlindSubmissions:  form[game.FieldMinBlindSubmissions],
		BlindSubmissionValue: form[game.FieldBlindSubmissionValue],
		DecayHalfLife:        form[game.FieldDecayHalfLife],
		SeedCapital:          form[game.FieldSeedCapital],
	}

	errs, err := game.ValidateHaiku(ctx, s.deps.Store, hf)
	if err != nil {
		s.internalError(w, r, "haiku validation failed", err)
		return
	}
	if errs != nil {
		s.renderPage(w, r, http.StatusUnprocessableEntity, "new", view{Title: "New haiku", Errors: errs, Form: form, Data: haikuFields})
		return
	}

	h, err := game.NewHaiku(admin.ID, hf)
	if err == nil {
		err = s.deps.Store.CreateHaiku(ctx, &h)
	}
	if errors.Is(err, storage.ErrDuplicate) {
		errs = game.FormErrors{}
		errs.Add(game.FieldSlug, game.MsgSlugTaken)
		s.renderPage(w, r, http.StatusConflict, "new", view{Title: "New haiku", Errors: errs, Form: form, Data: haikuFields})
		return
	}
	if err != nil {
		s.internalError(w, r, "create haiku failed", err)
		return
	}
	s.audit(r, admin, "create", h.Slug, nil)
	redirect(w, r, "/admin")
}

// haikuFromPath loads the haiku named by the {slug} route parameter, writing
// a 404 when it does not exist.
func (s *Server) haikuFromPath(w http.ResponseWriter, r *http.Request) (game.Haiku, bool) {
	slug := chi.URLParam(r, "slug")
	h, ok, err := s.deps.Store.HaikuBySlug(r.Context(), slug)
	if err != nil {
		s.internalError(w, r, "haiku lookup failed", err)
		return game.Haiku{}, false
	}
	if !ok {
		http.NotFound(w, r)
		return game.Haiku{}, false
	}
	return h, true
}

// handleStart starts the haiku's slicer. Starting a running slicer is
// silently ignored.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	h, ok := s.haikuFromPath(w, r)
	if !ok {
		return
	}
	admin, _ := currentAdmin(r)
	job, started, err := s.deps.Slicers.Start(r.Context(), h.Instance(), s.deps.SliceFunc(h))
	if err != nil {
		s.audit(r, admin, "start", h.Slug, err)
		s.internalError(w, r, "slicer start failed", err)
		return
	}
	if started {
		// A delete may have landed between the lookup and Start.
		_, still, err := s.deps.Store.HaikuByID(r.Context(), h.ID)
		if err != nil || !still {
			if _, serr := s.deps.Slicers.Stop(r.Context(), h.Instance()); serr != nil {
				s.log.Warn("slicer rollback failed", logx.String("key", job.Key), logx.Err(serr))
			}
			if err != nil {
				s.internalError(w, r, "haiku lookup failed", err)
				return
			}
			s.log.Info("haiku deleted during start; slicer rolled back", logx.String("slug", h.Slug))
			http.NotFound(w, r)
			return
		}
		s.audit(r, admin, "start", h.Slug, nil)
		s.log.Info("slicer started", logx.String("key", job.Key), logx.Duration("interval", job.Interval))
	} else {
		s.log.Debug("slicer already running", logx.String("slug", h.Slug))
	}
	redirect(w, r, "/admin")
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	h, ok := s.haikuFromPath(w, r)
	if !ok {
		return
	}
	admin, _ := currentAdmin(r)
	stopped, err := s.deps.Slicers.Stop(r.Context(), h.Instance())
	if err != nil {
		s.audit(r, admin, "stop", h.Slug, err)
		s.internalError(w, r, "slicer stop failed", err)
		return
	}
	if stopped {
		s.audit(r, admin, "stop", h.Slug, nil)
		s.log.Info("slicer stopped", logx.String("slug", h.Slug))
	}
	redirect(w, r, "/admin")
}

// handleDelete stops the slicer, then removes the haiku.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	h, ok := s.haikuFromPath(w, r)
	if !ok {
		return
	}
	admin, _ := currentAdmin(r)
	if _, err := s.deps.Slicers.Stop(r.Context(), h.Instance()); err != nil {
		s.audit(r, admin, "delete", h.Slug, err)
		s.internalError(w, r, "slicer stop failed", err)
		return
	}
	_, err := s.deps.Store.DeleteHaiku(r.Context(), h.ID)
	s.audit(r, admin, "delete", h.Slug, err)
	if err != nil {
		s.internalError(w, r, "delete haiku failed", err)
		return
	}
	redirect(w, r, "/admin")
}

func (s *Server) handleSlicers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Slicers.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Slicers.Snapshot()
	out := map[string]any{
		"status":   "ok",
		"slicers":  snap.Count,
		"running":  snap.Running,
		"sessions": s.sessions.len(),
	}
	if s.deps.Health != nil {
		out["runtime"] = s.deps.Health()
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
