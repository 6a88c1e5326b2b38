// Package session keeps server-side web sessions keyed by an opaque cookie.
package session

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName    = "catalog_session"
	CSRFFieldName = "csrf_token"
	CSRFHeader    = "X-CSRF-Token"

	FlashSuccess = "success"
	FlashError   = "error"

	contextKey = "session"
)

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Data struct {
	Username     string     `json:"username,omitempty"`
	TokenExpires *time.Time `json:"token_expires,omitempty"`
	CSRFToken    string     `json:"csrf_token,omitempty"`
	Flashes      []Flash    `json:"flashes,omitempty"`
}

func (d Data) clone() Data {
	cp := d
	cp.Flashes = append([]Flash(nil), d.Flashes...)
	return cp
}

// Session is the request scoped view of one stored session.
type Session struct {
	id   string
	data Data
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Username() string {
	return s.data.Username
}

func (s *Session) TokenExpires() *time.Time {
	return s.data.TokenExpires
}

func (s *Session) SetUser(username string, expires time.Time) {
	s.data.Username = username
	s.data.TokenExpires = &expires
}

func (s *Session) AddFlash(kind, message string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Kind: kind, Message: message})
}

// Flashes returns and clears the pending flash messages.
func (s *Session) Flashes() []Flash {
	out := s.data.Flashes
	s.data.Flashes = nil
	return out
}

// CSRFToken returns the session's token, creating it on first use.
func (s *Session) CSRFToken() string {
	if s.data.CSRFToken == "" {
		s.data.CSRFToken = uuid.NewString()
	}
	return s.data.CSRFToken
}

type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	log    *zap.Logger
}

func NewManager(store Store, ttl time.Duration, secure bool, log *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		secure: secure,
		log:    log.Named("session"),
	}
}

// Middleware loads the session before the handler and saves it afterwards,
// sliding its expiry on every request.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session

		if id, err := c.Cookie(CookieName); err == nil && id != "" {
			data, err := m.store.Get(c.Request.Context(), id)
			if err != nil {
				m.log.Warn("failed to load session", zap.Error(err))
			}
			if data != nil {
				sess = &Session{id: id, data: *data}
			}
		}

		if sess == nil {
			sess = m.start(c)
		}
		c.Set(contextKey, sess)

		c.Next()

		current := Get(c)
		if err := m.store.Save(c.Request.Context(), current.id, &current.data, m.ttl); err != nil {
			m.log.Error("failed to save session", zap.Error(err))
		}
	}
}

// Destroy drops the current session and starts an empty one in its place.
func (m *Manager) Destroy(c *gin.Context) *Session {
	if old := Get(c); old != nil {
		if err := m.store.Delete(c.Request.Context(), old.id); err != nil {
			m.log.Warn("failed to delete session", zap.Error(err))
		}
	}
	sess := m.start(c)
	c.Set(contextKey, sess)
	return sess
}

func (m *Manager) start(c *gin.Context) *Session {
	sess := &Session{id: uuid.NewString()}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sess.id, 0, "/", "", m.secure || c.Request.TLS != nil, true)
	return sess
}

// Get returns the session attached by Middleware.
func Get(c *gin.Context) *Session {
	if raw, ok := c.Get(contextKey); ok {
		if sess, ok := raw.(*Session); ok {
			return sess
		}
	}
	return nil
}

// CSRF rejects state-changing requests whose token does not match the session's.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sess := Get(c)
		sent := c.PostForm(CSRFFieldName)
		if sent == "" {
			sent = c.GetHeader(CSRFHeader)
		}

		if sess == nil || sess.data.CSRFToken == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(sess.data.CSRFToken)) != 1 {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
