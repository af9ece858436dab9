// Package auth provides authentication and authorization for the
// publishing API.
//
// Accounts sign in through one of three portals. The user portal admits
// every role, the author portal admits authors plus admins and editors,
// and the admin portal admits staff roles only.
//
// A successful login starts a server-side session stored in the local
// SQLite state database. The session token is returned in the response
// body and set as the "session" cookie, so clients may present it either
// way:
//
//	Authorization: Bearer <token>
//	Cookie: session=<token>
//
// Cookie-authenticated requests that change state must also carry the
// X-CSRF-Token header obtained from GET /api/auth/csrf.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex>      # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h      # Absolute session lifetime
//	AUTH_BCRYPT_COST=10            # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true       # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5      # Failed logins before lockout
//
// # Usage
//
//	service := auth.NewService(db, cfg.Auth)
//	middleware := auth.NewMiddleware(sessionManager)
//	router.Use(middleware.Handler())
//	admin := router.Group("/api/admin", middleware.RequireAuth(), middleware.RequireRole(users.StaffRoles...))
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c) // 0 when anonymous
package auth
