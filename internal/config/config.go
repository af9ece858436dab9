package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
)

type (
	Config struct {
		HTTP
		App
		Global
		Database
		State
		Auth
		CORS
		Tasks
		ContractReminders
		NotificationCleanup
		Admin
	}

	HTTP struct {
		Port int32
		Host string
	}
	App struct {
		Env     string // "development" or "production"
		Version string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Client          string // mysql or postgres
		Host            string
		Port            int
		User            string
		Password        string
		Name            string
		URL             string // DATABASE_URL, required for postgres
		SSL             bool
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		LogSQL          bool
		SlowQuery       time.Duration
	}
	// State is the local SQLite database holding sessions and the task queue.
	State struct {
		Path string
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
		CSRFEnabled     bool

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	CORS struct {
		Origins []string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	ContractReminders struct {
		Enabled  bool
		Schedule string // Cron format: "0 7 * * *" = daily at 07:00
		Days     int    // Fallback when the contract_reminder_days setting is missing
	}
	NotificationCleanup struct {
		Enabled       bool
		Schedule      string // Cron format: "0 3 * * 0" = Sundays at 03:00
		RetentionDays int    // Read notifications older than this are deleted
	}
	// Admin is the account seeded by the migrate command.
	Admin struct {
		Email    string
		Password string
		FullName string
	}
)

func (a App) IsProduction() bool {
	return a.Env == "production"
}

// Engine returns the configured database engine.
func (d Database) Engine() (dialect.Engine, error) {
	return dialect.ParseEngine(d.Client)
}

// DSN builds the driver connection string for the configured engine.
func (d Database) DSN() (string, error) {
	engine, err := d.Engine()
	if err != nil {
		return "", err
	}
	return d.dsnFor(engine)
}

func (d Database) dsnFor(engine dialect.Engine) (string, error) {
	if engine == dialect.Postgres {
		return d.postgresDSN()
	}
	return d.mysqlDSN(), nil
}

func (d Database) mysqlDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func (d Database) postgresDSN() (string, error) {
	raw := d.URL
	if raw == "" {
		return "", fmt.Errorf("DATABASE_URL is required when DB_CLIENT=postgres")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}

	q := u.Query()
	if q.Get("sslmode") == "" {
		if d.SSL {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// AdapterConfig returns the settings for database.Open.
func (d Database) AdapterConfig() (database.Config, error) {
	engine, err := d.Engine()
	if err != nil {
		return database.Config{}, err
	}
	return d.AdapterConfigFor(engine)
}

// AdapterConfigFor returns adapter settings for engine regardless of
// DB_CLIENT. The mysql-to-postgres migration opens both engines.
func (d Database) AdapterConfigFor(engine dialect.Engine) (database.Config, error) {
	dsn, err := d.dsnFor(engine)
	if err != nil {
		return database.Config{}, err
	}

	return database.Config{
		Engine:          engine,
		DSN:             dsn,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		LogSQL:          d.LogSQL,
		SlowQuery:       d.SlowQuery,
	}, nil
}

func parseOrigins(values ...string) []string {
	var origins []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				origins = append(origins, item)
			}
		}
	}
	return origins
}

// allowedOrigins adds the local development origins outside production.
func allowedOrigins(env string, configured []string) []string {
	if env == "production" {
		return configured
	}
	return append(append([]string{}, LocalCORSOrigins...), configured...)
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_version", AppVersion)
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Database defaults
	v.SetDefault("db_client", "mysql")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 3306)
	v.SetDefault("db_user", "root")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", DefaultDatabaseName)
	v.SetDefault("database_url", "")
	v.SetDefault("db_ssl", false)
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", "30m")
	v.SetDefault("db_log_sql", false)
	v.SetDefault("db_slow_query", "500ms")

	v.SetDefault("state_db_path", DefaultStateDatabasePath)

	// Auth defaults
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 10)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", false)
	v.SetDefault("auth_csrf_enabled", true)
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	v.SetDefault("cors_origin", "")
	v.SetDefault("frontend_url", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("contract_reminder_enabled", true)
	v.SetDefault("contract_reminder_schedule", "0 7 * * *") // Daily at 07:00
	v.SetDefault("contract_reminder_days", 30)

	v.SetDefault("notification_cleanup_enabled", true)
	v.SetDefault("notification_cleanup_schedule", "0 3 * * 0")
	v.SetDefault("notification_retention_days", 90)

	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("admin_full_name", "Administrator")

	env := v.GetString("APP_ENV")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		App: App{
			Env:     env,
			Version: v.GetString("APP_VERSION"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Client:          v.GetString("DB_CLIENT"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			URL:             v.GetString("DATABASE_URL"),
			SSL:             v.GetBool("DB_SSL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			LogSQL:          v.GetBool("DB_LOG_SQL"),
			SlowQuery:       v.GetDuration("DB_SLOW_QUERY"),
		},
		State: State{
			Path: v.GetString("STATE_DB_PATH"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFEnabled:      v.GetBool("AUTH_CSRF_ENABLED"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		CORS: CORS{
			Origins: allowedOrigins(env, parseOrigins(v.GetString("CORS_ORIGIN"), v.GetString("FRONTEND_URL"))),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		ContractReminders: ContractReminders{
			Enabled:  v.GetBool("CONTRACT_REMINDER_ENABLED"),
			Schedule: v.GetString("CONTRACT_REMINDER_SCHEDULE"),
			Days:     v.GetInt("CONTRACT_REMINDER_DAYS"),
		},
		NotificationCleanup: NotificationCleanup{
			Enabled:       v.GetBool("NOTIFICATION_CLEANUP_ENABLED"),
			Schedule:      v.GetString("NOTIFICATION_CLEANUP_SCHEDULE"),
			RetentionDays: v.GetInt("NOTIFICATION_RETENTION_DAYS"),
		},
		Admin: Admin{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			FullName: v.GetString("ADMIN_FULL_NAME"),
		},
	}
}
