package prefs

import (
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const cookieName = "qancha_prefs"

type CookieStore struct {
	store *sessions.CookieStore
}

func NewCookieStore(secret []byte, secure bool) *CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieStore{store: store}
}

// Open returns the visitor's preferences. A cookie that fails verification is
// discarded and an empty set is returned.
func (c *CookieStore) Open(r *http.Request) *Session {
	session, err := c.store.Get(r, cookieName)
	if err != nil {
		zap.S().Warnf("prefs.Open: discarding unreadable cookie: %v", err)
		session, _ = c.store.New(r, cookieName)
	}
	return &Session{session: session}
}

// Session is a cookie-backed Values. Changes take effect after Save.
type Session struct {
	session *sessions.Session
}

func (s *Session) Get(key string) (string, bool) {
	value, ok := s.session.Values[key].(string)
	return value, ok
}

func (s *Session) Set(key, value string) {
	s.session.Values[key] = value
}

func (s *Session) Remove(key string) {
	delete(s.session.Values, key)
}

func (s *Session) Save(r *http.Request, w http.ResponseWriter) error {
	return s.session.Save(r, w)
}
