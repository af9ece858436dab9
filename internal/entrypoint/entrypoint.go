package entrypoint

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/unipress/publishing/internal/auth"
	"github.com/unipress/publishing/internal/config"
	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/contracts"
	"github.com/unipress/publishing/internal/database/notifications"
	"github.com/unipress/publishing/internal/database/settings"
	http_controllers "github.com/unipress/publishing/internal/http"
	"github.com/unipress/publishing/internal/scheduler"
	"github.com/unipress/publishing/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// SIGKILL cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// openStateDB opens the local SQLite database that holds sessions.
func openStateDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return db, nil
}

// csrfSecret decodes AUTH_SESSION_SECRET, or generates a secret that lives
// until the process exits. A non-hex secret is used as raw bytes.
func csrfSecret(cfg config.Auth) ([]byte, error) {
	if !cfg.CSRFEnabled {
		return nil, nil
	}
	if cfg.SessionSecret != "" {
		secret, err := hex.DecodeString(cfg.SessionSecret)
		if err != nil {
			return []byte(cfg.SessionSecret), nil
		}
		return secret, nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(generated)
}

// scheduledJobs returns the enabled recurring jobs.
func scheduledJobs(cfg *config.Config) []scheduler.Job {
	var jobs []scheduler.Job
	if cfg.ContractReminders.Enabled {
		jobs = append(jobs, scheduler.Job{
			Name:     tasks.ContractRemindersQueue,
			Schedule: cfg.ContractReminders.Schedule,
			Task:     tasks.ContractRemindersTask{},
		})
	}
	if cfg.NotificationCleanup.Enabled {
		jobs = append(jobs, scheduler.Job{
			Name:     tasks.CleanupNotificationsQueue,
			Schedule: cfg.NotificationCleanup.Schedule,
			Task:     tasks.CleanupNotificationsTask{RetentionDays: cfg.NotificationCleanup.RetentionDays},
		})
	}
	return jobs
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting University Publishing API v%s (%s)", version, cfg.App.Env)

	adapterCfg, err := cfg.Database.AdapterConfig()
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}
	db, err := database.Open(adapterCfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	stateDB, err := openStateDB(cfg.State.Path)
	if err != nil {
		log.Fatalf("Failed to initialize state database: %v", err)
	}
	defer stateDB.Close()

	sessionManager, err := auth.NewSessionManager(stateDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	secret, err := csrfSecret(cfg.Auth)
	if err != nil {
		log.Fatalf("%v", err)
	}

	authService := auth.NewService(db, cfg.Auth)
	authMiddleware := auth.NewMiddleware(sessionManager)
	authController := auth.NewAuthController(authService, sessionManager, authMiddleware, cfg.Auth, cfg.App.IsProduction())
	defer authController.Stop()

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		DatabaseName:   cfg.Database.Name,
		AuthController: authController,
		AuthMiddleware: authMiddleware,
		BcryptCost:     cfg.Auth.BcryptCost,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		CORSOrigins:    cfg.CORS.Origins,
		Version:        version,
		Environment:    cfg.App.Env,
	}

	// Background jobs
	var (
		taskClient *tasks.Client
		jobs       *scheduler.Scheduler
		cancelJobs context.CancelFunc = func() {}
	)
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.State.Path, tasks.NewConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		notificationRepo := notifications.NewRepository(db)
		taskClient.Register(
			tasks.NewContractRemindersQueue(tasks.ContractReminders{
				Contracts:     contracts.NewRepository(db),
				Notifications: notificationRepo,
				Settings:      settings.NewRepository(db),
				DefaultDays:   cfg.ContractReminders.Days,
			}),
			tasks.NewCleanupNotificationsQueue(notificationRepo),
		)

		var jobsCtx context.Context
		jobsCtx, cancelJobs = context.WithCancel(context.Background())
		go taskClient.Start(jobsCtx)

		jobs = scheduler.New(taskClient, scheduledJobs(cfg)...)
		if err := jobs.Start(jobsCtx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}

		routerCfg.Jobs = jobs
		routerCfg.TaskStatus = taskClient
	} else {
		log.Printf("Task queue disabled (TASKS_ENABLED=false)")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if jobs != nil {
			jobs.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancelJobs()
	}

	Serve(router, cfg, onShutdown)
}
