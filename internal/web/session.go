package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "haiku_session"

// session is the server-side state behind a cookie token.
type session struct {
	UserID      int64
	LoginTarget string
	expires     time.Time
}

type sessionRef struct {
	token string
	data  session
}

type sessionCtxKey struct{}

// sessionStore keeps sessions in memory. They do not survive a restart.
type sessionStore struct {
	mu       sync.Mutex
	lifetime time.Duration
	secure   bool
	items    map[string]session
	now      func() time.Time
}

func newSessionStore(lifetime time.Duration, secure bool) *sessionStore {
	return &sessionStore{
		lifetime: lifetime,
		secure:   secure,
		items:    map[string]session{},
		now:      time.Now,
	}
}

// middleware attaches the caller's session to the request context and slides
// its expiry forward.
func (m *sessionStore) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := &sessionRef{}
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			m.mu.Lock()
			s, ok := m.items[c.Value]
			now := m.now()
			switch {
			case ok && now.Before(s.expires):
				s.expires = now.Add(m.lifetime)
				m.items[c.Value] = s
				ref.token, ref.data = c.Value, s
			case ok:
				delete(m.items, c.Value)
			}
			m.mu.Unlock()
			if ref.token != "" {
				m.setCookie(w, ref.token)
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey{}, ref)))
	})
}

func currentSession(r *http.Request) *sessionRef {
	if ref, ok := r.Context().Value(sessionCtxKey{}).(*sessionRef); ok {
		return ref
	}
	return &sessionRef{}
}

// save stores ref, issuing a token when it has none.
func (m *sessionStore) save(w http.ResponseWriter, ref *sessionRef) {
	if ref.token == "" {
		ref.token = uuid.NewString()
	}
	m.mu.Lock()
	ref.data.expires = m.now().Add(m.lifetime)
	m.items[ref.token] = ref.data
	m.mu.Unlock()
	m.setCookie(w, ref.token)
}

// renew replaces the token of ref, keeping its data. Used on login.
func (m *sessionStore) renew(w http.ResponseWriter, ref *sessionRef) {
	if ref.token != "" {
		m.mu.Lock()
		delete(m.items, ref.token)
		m.mu.Unlock()
		ref.token = ""
	}
	m.save(w, ref)
}

func (m *sessionStore) destroy(w http.ResponseWriter, ref *sessionRef) {
	if ref.token != "" {
		m.mu.Lock()
		delete(m.items, ref.token)
		m.mu.Unlock()
	}
	*ref = sessionRef{}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *sessionStore) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.lifetime / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sweep drops expired sessions and returns how many were removed.
func (m *sessionStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for tok, s := range m.items {
		if !now.Before(s.expires) {
			delete(m.items, tok)
			n++
		}
	}
	return n
}

func (m *sessionStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
