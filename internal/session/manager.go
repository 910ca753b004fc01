package session

import (
	"context"
	"crypto/rand"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
)

const (
	cookieName = "donationhub"
	idKey      = "sid"
)

// Flash is a one-shot notification shown on the next page view.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Secret string
	MaxAge time.Duration
	Secure bool
	Now    func() time.Time
}

// Manager ties the signed cookie to the session store.
type Manager struct {
	cookies *sessions.CookieStore
	store   Store
	maxAge  time.Duration
	now     func() time.Time
}

// NewManager creates a manager. With no secret a random key is generated,
// so sessions do not survive a restart.
func NewManager(store Store, cfg ManagerConfig) *Manager {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("session: failed to generate key: %v", err))
		}
		logger.Warn("SESSION_SECRET not set; using a random key")
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{cookies: cookies, store: store, maxAge: cfg.MaxAge, now: cfg.Now}
}

// Store returns the backing store.
func (m *Manager) Store() Store {
	return m.store
}

func (m *Manager) cookie(r *http.Request) *sessions.Session {
	// A cookie signed with an old key decodes as an error; Get still
	// returns a fresh session in that case.
	c, err := m.cookies.Get(r, cookieName)
	if err != nil {
		logger.DebugContext(r.Context(), "discarding unreadable session cookie", "error", err)
	}
	return c
}

// Begin starts a session for a successful login and sets the cookie. The
// session ends when the token's exp claim says so, or after MaxAge.
func (m *Manager) Begin(w http.ResponseWriter, r *http.Request, auth models.AuthResult) (*Session, error) {
	if auth.Token == "" {
		return nil, apperrors.ValidationError{Field: "token", Message: "login response carried no token"}
	}

	now := m.now()
	expires := now.Add(m.maxAge)
	if exp, ok := TokenExpiry(auth.Token); ok && exp.Before(expires) {
		expires = exp
	}

	s := &Session{
		ID:        uuid.NewString(),
		Token:     auth.Token,
		UserID:    auth.User.ID,
		Name:      auth.User.Name,
		Role:      auth.User.Role,
		ExpiresAt: expires,
		CreatedAt: now,
	}
	if err := m.store.Save(r.Context(), s); err != nil {
		return nil, err
	}

	c := m.cookie(r)
	c.Values[idKey] = s.ID
	if err := c.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session cookie: %w", err)
	}
	return s, nil
}

// Current returns the request's session. Missing and expired sessions are
// reported as apperrors.ErrNotFound.
func (m *Manager) Current(r *http.Request) (*Session, error) {
	id, _ := m.cookie(r).Values[idKey].(string)
	if id == "" {
		return nil, apperrors.NotFoundError{Kind: "session", ID: ""}
	}

	s, err := m.store.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.store.Delete(r.Context(), id); err != nil {
			logger.WarnContext(r.Context(), "failed to delete expired session", "error", err)
		}
		return nil, apperrors.NotFoundError{Kind: "session", ID: id}
	}
	return s, nil
}

// End deletes the session and clears the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	c := m.cookie(r)
	if id, _ := c.Values[idKey].(string); id != "" {
		if err := m.store.Delete(r.Context(), id); err != nil {
			return err
		}
	}
	delete(c.Values, idKey)
	c.Options.MaxAge = -1
	return c.Save(r, w)
}

// Flash queues a notification for the next page view.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	c := m.cookie(r)
	c.AddFlash(Flash{Kind: kind, Message: message})
	if err := c.Save(r, w); err != nil {
		logger.WarnContext(r.Context(), "failed to save flash", "error", err)
	}
}

// Flashes drains the queued notifications.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	c := m.cookie(r)
	raw := c.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := c.Save(r, w); err != nil {
		logger.WarnContext(r.Context(), "failed to clear flashes", "error", err)
	}

	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			out = append(out, flash)
		}
	}
	return out
}

// Load is middleware that attaches the current session, if any, to the
// request context.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Current(r)
		switch {
		case err == nil:
			r = r.WithContext(WithSession(r.Context(), s))
		case !errors.Is(err, apperrors.ErrNotFound):
			logger.ErrorContext(r.Context(), "failed to load session", "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

// StartSweeper deletes expired sessions every interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Starting session sweeper", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.store.DeleteExpired(ctx, m.now())
			if err != nil {
				logger.Error("Session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("Swept expired sessions", "count", n)
			}
		}
	}
}
