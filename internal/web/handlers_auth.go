package web

import (
	"errors"
	"net/http"
	"strings"

	"haikuadmin/internal/game"
	"haikuadmin/internal/storage"
	logx "haikuadmin/pkg/logx"
)

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "register", view{Title: "Register"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PostFormValue(game.FieldUsername)
	password := r.PostFormValue(game.FieldPassword)
	confirm := r.PostFormValue(game.FieldConfirm)

	errs, err := game.ValidateAdminRegistration(ctx, s.deps.Store, username, password, confirm)
	if err != nil {
		s.internalError(w, r, "register validation failed", err)
		return
	}
	if errs != nil {
		s.renderPage(w, r, http.StatusUnprocessableEntity, "register", view{
			Title:  "Register",
			Errors: errs,
			Form:   map[string]string{game.FieldUsername: username},
		})
		return
	}

	admin, err := game.NewAdmin(username, password)
	if err == nil {
		err = s.deps.Store.CreateAdmin(ctx, &admin)
	}
	if err != nil {
		s.internalError(w, r, "create admin failed", err)
		return
	}
	s.audit(r, admin, "register", admin.Username, nil)
	s.log.Info("administrator registered", logx.String("username", admin.Username))

	sess := currentSession(r)
	sess.data.UserID = admin.ID
	s.sessions.renew(w, sess)
	redirect(w, r, "/admin")
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "login", view{Title: "Log in"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PostFormValue(game.FieldUsername)
	password := r.PostFormValue(game.FieldPassword)
	form := map[string]string{game.FieldUsername: username}

	if !s.limiter.Allow(username) {
		errs := game.FormErrors{}
		errs.Add(game.FieldForm, game.MsgTooManyAttempts)
		s.log.Warn("login throttled", logx.String("username", username), logx.String("remote", r.RemoteAddr))
		s.renderPage(w, r, http.StatusTooManyRequests, "login", view{Title: "Log in", Errors: errs, Form: form})
		return
	}

	admin, errs, err := game.ValidateAdminLogin(ctx, s.deps.Store, username, password)
	if err != nil {
		s.internalError(w, r, "login validation failed", err)
		return
	}
	if errs != nil {
		s.renderPage(w, r, http.StatusUnauthorized, "login", view{Title: "Log in", Errors: errs, Form: form})
		return
	}
	s.limiter.Reset(username)
	s.audit(r, admin, "login", admin.Username, nil)

	sess := currentSession(r)
	target := sess.data.LoginTarget
	sess.data.UserID = admin.ID
	sess.data.LoginTarget = ""
	s.sessions.renew(w, sess)

	if !strings.HasPrefix(target, "/admin") || strings.HasPrefix(target, "/admin/log") {
		target = "/admin"
	}
	redirect(w, r, target)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.destroy(w, currentSession(r))
	redirect(w, r, "/admin/login")
}

// renderPage renders a template with the current admin attached.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	if a, ok := currentAdmin(r); ok {
		v.Admin = &a
	}
	if err := s.pages.render(w, status, name, v); err != nil {
		s.log.Error("render failed", logx.String("page", name), logx.Err(err))
		if errors.Is(err, errRender) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// audit appends an operator action. Failures are logged, never surfaced.
func (s *Server) audit(r *http.Request, actor game.Admin, action, target string, opErr error) {
	e := storage.AuditEntry{
		ActorID:   actor.ID,
		ActorName: actor.Username,
		Action:    action,
		Target:    target,
		OK:        opErr == nil,
	}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	if err := s.deps.Store.AppendAudit(r.Context(), e); err != nil {
		s.log.Warn("audit append failed", logx.String("action", action), logx.Err(err))
	}
}
