package http

import (
	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/auth"
	"github.com/unipress/publishing/internal/database/authors"
	"github.com/unipress/publishing/internal/database/books"
	"github.com/unipress/publishing/internal/database/contacts"
	"github.com/unipress/publishing/internal/database/contracts"
	"github.com/unipress/publishing/internal/database/dashboard"
	"github.com/unipress/publishing/internal/database/inventory"
	"github.com/unipress/publishing/internal/database/notifications"
	"github.com/unipress/publishing/internal/database/production"
	"github.com/unipress/publishing/internal/database/reports"
	"github.com/unipress/publishing/internal/database/royalties"
	"github.com/unipress/publishing/internal/database/sales"
	"github.com/unipress/publishing/internal/database/search"
	"github.com/unipress/publishing/internal/database/settings"
	"github.com/unipress/publishing/internal/database/submissions"
	"github.com/unipress/publishing/internal/database/training"
	"github.com/unipress/publishing/internal/database/users"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Repositories are built over cfg.Database.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}
	router.Use(auth.CORSMiddleware(cfg.CORSOrigins))

	// Session lookup must run before CSRF, which only checks cookie sessions
	router.Use(cfg.AuthMiddleware.Handler())
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	db := cfg.Database
	bookRepo := books.NewRepository(db)
	authorRepo := authors.NewRepository(db)
	trainingRepo := training.NewRepository(db)
	dashboardRepo := dashboard.NewRepository(db)
	salesRepo := sales.NewRepository(db)
	inventoryRepo := inventory.NewRepository(db)

	// Health endpoints
	health := NewHealthController(db, cfg.DatabaseName, cfg.Version, cfg.Environment)
	router.GET("/api/system/health", health.SystemStatus)
	router.GET("/api/health", health.Status)
	router.GET("/ping", health.Ping)

	NewPublicController(bookRepo, authorRepo, trainingRepo, contacts.NewRepository(db)).RegisterRoutes(router)
	NewAboutController(dashboardRepo).RegisterRoutes(router)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	signedIn := router.Group("/api", cfg.AuthMiddleware.RequireAuth())
	signedIn.GET("/notifications", NewNotificationsController(notifications.NewRepository(db)).List)

	author := router.Group("/api/author",
		cfg.AuthMiddleware.RequireAuth(),
		cfg.AuthMiddleware.RequireRole(users.RoleAuthor))
	NewAuthorPortalController(authorRepo).RegisterRoutes(author)

	staff := router.Group("/api",
		cfg.AuthMiddleware.RequireAuth(),
		cfg.AuthMiddleware.RequireRole(users.StaffRoles...))
	NewTrainingController(trainingRepo).RegisterStaffRoutes(staff)
	NewProductionController(production.NewRepository(db)).RegisterStaffRoutes(staff)
	NewInventoryController(inventoryRepo).RegisterStaffRoutes(staff)
	NewRoyaltiesController(royalties.NewRepository(db)).RegisterStaffRoutes(staff)
	NewSalesController(salesRepo).RegisterStaffRoutes(staff)

	admin := router.Group("/api/admin",
		cfg.AuthMiddleware.RequireAuth(),
		cfg.AuthMiddleware.RequireRole(users.StaffRoles...))

	NewDashboardController(dashboardRepo).RegisterRoutes(admin)
	NewUsersController(users.NewRepository(db), cfg.BcryptCost).RegisterRoutes(admin)
	NewAuthorsController(authorRepo).RegisterRoutes(admin)
	NewBooksController(bookRepo).RegisterRoutes(admin)
	NewSubmissionsController(submissions.NewRepository(db)).RegisterRoutes(admin)
	NewContractsController(contracts.NewRepository(db)).RegisterRoutes(admin)
	NewTrainingController(trainingRepo).RegisterRoutes(admin)
	NewSettingsController(settings.NewRepository(db)).RegisterRoutes(admin)
	NewSalesController(salesRepo).RegisterRoutes(admin)
	NewInventoryController(inventoryRepo).RegisterRoutes(admin)
	NewReportsController(reports.NewRepository(db), search.NewRepository(db)).RegisterRoutes(admin)

	// Task management endpoints
	if cfg.Jobs != nil && cfg.TaskStatus != nil {
		NewTasksController(cfg.Jobs, cfg.TaskStatus).RegisterRoutes(admin)
	}

	return router
}
