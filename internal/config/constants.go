package config

const (
	// DefaultStateDatabasePath is the local SQLite file for sessions and queued tasks
	DefaultStateDatabasePath = "./publishing-state.db"

	// DefaultDatabaseName is the MySQL schema used when DB_NAME is not set
	DefaultDatabaseName = "university_publishing"

	AppVersion = "2.0.0"
)

// LocalCORSOrigins are always allowed outside production.
var LocalCORSOrigins = []string{
	"http://localhost:5500",
	"http://localhost:3000",
	"http://localhost:3001",
	"http://127.0.0.1:5500",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:3001",
}
