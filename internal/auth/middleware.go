package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for user data
const (
	ContextKeySession  = "auth_session"
	ContextKeyAuthType = "auth_type" // "session", "bearer", or "none"
	ContextKeyToken    = "auth_token"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Middleware resolves the session behind a request.
type Middleware struct {
	sessions *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(sessions *SessionManager) *Middleware {
	return &Middleware{sessions: sessions}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// ok is false when the header is missing or uses another scheme.
func bearerToken(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Handler attaches the caller's session to the context when the request
// carries a valid token. It never rejects a request; protected routes add
// RequireAuth.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyAuthType, AuthTypeNone)

		token, authType := "", AuthTypeNone
		if t, ok := bearerToken(c); ok {
			token, authType = t, AuthTypeBearer
		} else if cookie, err := c.Cookie(m.sessions.Cookie.Name); err == nil && cookie != "" {
			token, authType = cookie, AuthTypeSession
		}
		if token == "" {
			c.Next()
			return
		}

		c.Set(ContextKeyToken, token)
		session, err := m.sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				log.Printf("Failed to load session: %v", err)
			}
			c.Next()
			return
		}

		c.Set(ContextKeySession, session)
		c.Set(ContextKeyAuthType, authType)
		c.Next()
	}
}

func deny(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// RequireAuth rejects requests without a valid session.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c) != nil {
			c.Next()
			return
		}
		if GetToken(c) == "" {
			deny(c, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		deny(c, http.StatusUnauthorized, "Invalid token. Please login again.")
	}
}

// RequireRole returns a middleware that requires one of roles. It must run
// after RequireAuth.
func (m *Middleware) RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil {
			deny(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !roleSet[session.Role] {
			deny(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetSession returns the authenticated session, or nil.
func GetSession(c *gin.Context) *SessionData {
	if v, exists := c.Get(ContextKeySession); exists {
		if session, ok := v.(*SessionData); ok {
			return session
		}
	}
	return nil
}

// GetUserID returns the authenticated user's id, or 0.
func GetUserID(c *gin.Context) int64 {
	if session := GetSession(c); session != nil {
		return session.UserID
	}
	return 0
}

// GetUserRole returns the authenticated user's role, or "".
func GetUserRole(c *gin.Context) string {
	if session := GetSession(c); session != nil {
		return session.Role
	}
	return ""
}

// GetToken returns the token presented by the request, valid or not.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// IsAuthenticated returns true if the request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	return GetSession(c) != nil
}
