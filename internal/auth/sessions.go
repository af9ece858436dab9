package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/unipress/publishing/internal/config"
	"github.com/unipress/publishing/internal/database/users"
)

// Session data keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyEmail    = "email"
	SessionKeyFullName = "full_name"
	SessionKeyRole     = "role"
	SessionKeyLoginAt  = "login_at"
)

func init() {
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager. Session tokens double as API
// tokens: they are returned from the login endpoints and accepted either
// as a Bearer token or as the session cookie.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager backed by the local state
// database.
func NewSessionManager(stateDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := stateDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := newSessionManager(cfg)
	sm.Store = sqlite3store.New(stateDB)
	return sm, nil
}

func newSessionManager(cfg config.Auth) *SessionManager {
	sm := scs.New()

	// Bearer clients never refresh their session, so only the absolute
	// lifetime applies.
	sm.Lifetime = cfg.SessionLifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}
}

// SessionData holds the identity stored in a session.
type SessionData struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	LoginAt   time.Time `json:"login_at"`
	ExpiresAt time.Time `json:"-"`
}

// ExpiresIn returns the whole seconds left before the session ends.
func (d *SessionData) ExpiresIn(now time.Time) int64 {
	left := d.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return int64(left / time.Second)
}

// Start creates a new session for the user and returns its token.
func (sm *SessionManager) Start(ctx context.Context, user *users.User) (*SessionData, error) {
	ctx, err := sm.Load(ctx, "")
	if err != nil {
		return nil, err
	}

	loginAt := time.Now()
	sm.Put(ctx, SessionKeyUserID, user.ID)
	sm.Put(ctx, SessionKeyEmail, user.Email)
	sm.Put(ctx, SessionKeyFullName, user.FullName)
	sm.Put(ctx, SessionKeyRole, user.Role)
	sm.Put(ctx, SessionKeyLoginAt, loginAt)

	token, expiry, err := sm.Commit(ctx)
	if err != nil {
		return nil, err
	}

	return &SessionData{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		LoginAt:   loginAt,
		ExpiresAt: expiry,
	}, nil
}

// Lookup returns the session identified by token, or ErrSessionNotFound
// when the token is unknown or expired.
func (sm *SessionManager) Lookup(ctx context.Context, token string) (*SessionData, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	ctx, err := sm.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	userID := sm.GetInt64(ctx, SessionKeyUserID)
	if userID == 0 {
		return nil, ErrSessionNotFound
	}

	loginAt, _ := sm.Get(ctx, SessionKeyLoginAt).(time.Time)

	return &SessionData{
		Token:     token,
		UserID:    userID,
		Email:     sm.GetString(ctx, SessionKeyEmail),
		FullName:  sm.GetString(ctx, SessionKeyFullName),
		Role:      sm.GetString(ctx, SessionKeyRole),
		LoginAt:   loginAt,
		ExpiresAt: sm.Deadline(ctx),
	}, nil
}

// End destroys the session identified by token. Unknown tokens are ignored.
func (sm *SessionManager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	ctx, err := sm.Load(ctx, token)
	if err != nil {
		return err
	}
	return sm.Destroy(ctx)
}

// SetCookie writes the session cookie for browser clients.
func (sm *SessionManager) SetCookie(ctx context.Context, w http.ResponseWriter, session *SessionData) {
	sm.WriteSessionCookie(ctx, w, session.Token, session.ExpiresAt)
}

// ClearCookie expires the session cookie.
func (sm *SessionManager) ClearCookie(ctx context.Context, w http.ResponseWriter) {
	sm.WriteSessionCookie(ctx, w, "", time.Time{})
}
