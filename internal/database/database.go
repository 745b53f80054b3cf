package database

import (
	"context"
	"fmt"
	"time"

	"quizbot/internal/config"
	"quizbot/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver, registered as "oracle"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure Go SQLite driver, registered as "sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverOracle = "oracle"
)

func init() {
	// go-ora takes :name placeholders; sqlx does not know its driver name.
	sqlx.BindDriver(DriverOracle, sqlx.NAMED)
}

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	driver := cfg.DB.Driver
	if driver != DriverSQLite && driver != DriverOracle {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one writer at a time keeps SQLite away from SQLITE_BUSY storms
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	logger.Get().Info("Connected to database", zap.String("driver", driver))
	return db, nil
}

// IsOracle reports whether db talks to Oracle.
func IsOracle(db interface{ DriverName() string }) bool {
	return db.DriverName() == DriverOracle
}
