package web

import (
	"context"
	"net/http"

	"haikuadmin/internal/game"
	logx "haikuadmin/pkg/logx"
)

type adminCtxKey struct{}

// currentAdmin returns the admin resolved by requiresAdminLogin.
func currentAdmin(r *http.Request) (game.Admin, bool) {
	a, ok := r.Context().Value(adminCtxKey{}).(game.Admin)
	return a, ok
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.log.Error(msg, logx.String("path", r.URL.Path), logx.Err(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// requiresAdmin sends visitors to registration until the first admin exists.
func (s *Server) requiresAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.deps.Store.AdministratorExists(r.Context())
		if err != nil {
			s.internalError(w, r, "admin lookup failed", err)
			return
		}
		if !ok {
			redirect(w, r, "/admin/register")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requiresNoAdmin closes registration once an admin exists.
func (s *Server) requiresNoAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.deps.Store.AdministratorExists(r.Context())
		if err != nil {
			s.internalError(w, r, "admin lookup failed", err)
			return
		}
		if ok {
			redirect(w, r, "/admin/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requiresAdminLogin admits logged-in administrators. Anonymous visitors have
// their target remembered and go to login; non-admin sessions are logged out.
func (s *Server) requiresAdminLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r)
		if sess.data.UserID == 0 {
			if r.Method == http.MethodGet {
				sess.data.LoginTarget = r.URL.Path
				s.sessions.save(w, sess)
			}
			redirect(w, r, "/admin/login")
			return
		}
		admin, ok, err := s.deps.Store.AdminByID(r.Context(), sess.data.UserID)
		if err != nil {
			s.internalError(w, r, "admin lookup failed", err)
			return
		}
		if !ok || !admin.IsAdmin {
			redirect(w, r, "/admin/logout")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminCtxKey{}, admin)))
	})
}

// requiresAdminNoLogin keeps logged-in users away from the login form.
func (s *Server) requiresAdminNoLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentSession(r).data.UserID != 0 {
			redirect(w, r, "/admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
