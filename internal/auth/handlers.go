package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/config"
)

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	middleware     *Middleware
	rateLimiter    *RateLimiter
	production     bool
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, middleware *Middleware, cfg config.Auth, production bool) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		middleware:     middleware,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		production: production,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.POST("/api/users/register", ac.RegisterUser)
	router.POST("/api/authors/register", ac.RegisterAuthor)
	router.POST("/api/users/login", ac.login(PortalUser))
	router.POST("/api/authors/login", ac.login(PortalAuthor))
	router.POST("/api/admin/login", ac.login(PortalAdmin))
	router.GET("/api/auth/csrf", ac.CSRFToken)

	protected := router.Group("/api/auth", ac.middleware.RequireAuth())
	protected.GET("/verify", ac.Verify)
	protected.POST("/logout", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// internalError logs err and answers 500. The error text is only exposed
// outside production.
func (ac *AuthController) internalError(c *gin.Context, message string, err error) {
	log.Printf("%s: %v", message, err)
	body := gin.H{"success": false, "message": message}
	if !ac.production {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// RegisterUser creates a pending website account.
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var req UserRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := ac.service.RegisterUser(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrMissingFields):
		fail(c, http.StatusBadRequest, "Username, email, password, and full name are required")
		return
	case errors.Is(err, ErrEmailInvalid):
		fail(c, http.StatusBadRequest, "Invalid email format")
		return
	case errors.Is(err, ErrPasswordTooShort):
		fail(c, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	case errors.Is(err, ErrPasswordTooLong):
		fail(c, http.StatusBadRequest, "Password must be at most 72 characters long")
		return
	case errors.Is(err, ErrUserExists):
		fail(c, http.StatusBadRequest, "User with this email or username already exists")
		return
	case err != nil:
		ac.internalError(c, "Failed to register user. Please try again later.", err)
		return
	}

	session, err := ac.sessionManager.Start(c.Request.Context(), user)
	if err != nil {
		ac.internalError(c, "Failed to register user. Please try again later.", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully. Please verify your email.",
		"token":   session.Token,
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName,
			"phone":     nullString(user.Phone),
			"role":      user.Role,
			"status":    user.Status,
		},
	})
}

// RegisterAuthor creates a pending author account. Accepts JSON or form
// bodies.
func (ac *AuthController) RegisterAuthor(c *gin.Context) {
	var req AuthorRegistration
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, authorID, err := ac.service.RegisterAuthor(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrMissingFields):
		fail(c, http.StatusBadRequest, "Missing required fields for author registration")
		return
	case errors.Is(err, ErrEmailInvalid):
		fail(c, http.StatusBadRequest, "Invalid email format")
		return
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		fail(c, http.StatusBadRequest, "Password must be between 6 and 72 characters long")
		return
	case errors.Is(err, ErrEmailTaken):
		fail(c, http.StatusBadRequest, "User with this email already exists")
		return
	case errors.Is(err, ErrStaffIDTaken):
		fail(c, http.StatusBadRequest, "Author with this staff ID already exists")
		return
	case err != nil:
		ac.internalError(c, "Failed to register author", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Author registered successfully. Please wait for admin approval.",
		"userId":   userID,
		"authorId": authorID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var inactiveMessages = map[Portal]string{
	PortalUser:   "Account is not active. Please contact administrator.",
	PortalAuthor: "Account is pending approval or inactive",
	PortalAdmin:  "Account is not active",
}

func (ac *AuthController) login(portal Portal) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Email and password are required")
			return
		}

		ip := c.ClientIP()
		if allowed, retryAfter := ac.rateLimiter.Allow(ip, req.Email); !allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Round(time.Second)/time.Second), 10))
			fail(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}

		result, err := ac.service.Login(c.Request.Context(), portal, req.Email, req.Password)
		switch {
		case errors.Is(err, ErrMissingFields):
			fail(c, http.StatusBadRequest, "Email and password are required")
			return
		case errors.Is(err, ErrInvalidCredentials):
			ac.rateLimiter.RecordFailure(ip, req.Email)
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		case errors.Is(err, ErrAuthorRoleRequired):
			fail(c, http.StatusForbidden, "Access denied. Author account required.")
			return
		case errors.Is(err, ErrAccountInactive):
			fail(c, http.StatusForbidden, inactiveMessages[portal])
			return
		case err != nil:
			ac.internalError(c, "Internal server error during login", err)
			return
		}
		ac.rateLimiter.RecordSuccess(ip, req.Email)

		session, err := ac.sessionManager.Start(c.Request.Context(), result.User)
		if err != nil {
			ac.internalError(c, "Internal server error during login", err)
			return
		}
		ac.sessionManager.SetCookie(c.Request.Context(), c.Writer, session)

		message := "Login successful"
		if portal == PortalAdmin {
			message = "Admin login successful"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": message,
			"token":   session.Token,
			"user":    loginUser(portal, result),
		})
	}
}

func loginUser(portal Portal, result *LoginResult) gin.H {
	u := result.User
	body := gin.H{
		"id":        u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
		"role":      u.Role,
		"status":    u.Status,
	}
	switch portal {
	case PortalAuthor:
		body["authorProfile"] = result.AuthorProfile
	case PortalUser:
		body["username"] = u.Username
		body["profile_image"] = nullString(u.ProfileImage)
	default:
		body["username"] = u.Username
	}
	return body
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Verify returns the identity behind the presented token.
func (ac *AuthController) Verify(c *gin.Context) {
	session := GetSession(c)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"user":      session,
		"valid":     true,
		"expiresIn": session.ExpiresIn(time.Now()),
	})
}

// Logout destroys the session behind the presented token.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessionManager.End(c.Request.Context(), GetToken(c)); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	ac.sessionManager.ClearCookie(c.Request.Context(), c.Writer)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// CSRFToken returns the token cookie-authenticated clients send in the
// X-CSRF-Token header.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"csrfToken": GetCSRFToken(c),
		"header":    CSRFTokenHeader,
	})
}
