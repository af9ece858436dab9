package http

import (
	"github.com/unipress/publishing/internal/auth"
	"github.com/unipress/publishing/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database     *database.Adapter
	DatabaseName string

	// Authentication
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	BcryptCost     int

	// CSRF protection for cookie sessions; disabled when the secret is empty
	CSRFSecret    []byte
	SecureCookies bool

	// Allowed cross-origin callers
	CORSOrigins []string

	// Background jobs (optional)
	Jobs       JobRunner
	TaskStatus TaskStatusReader

	// Application info
	Version     string
	Environment string
}
