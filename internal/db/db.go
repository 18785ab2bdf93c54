package db

import (
	"database/sql"
	"fmt"

	"github.com/legaltech/webgate/internal/config"
)

// Open returns a *sql.DB for the audit store based on the configured driver.
func Open(cfg *config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return openSQLite(cfg.DBPath)
	case "postgres":
		// The audit queries use sqlite-style ? placeholders and need a
		// rebind to $N before this driver can serve them.
		return openPostgres(cfg.DBUrl)
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.DBDriver)
	}
}
