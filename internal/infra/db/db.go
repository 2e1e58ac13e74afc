package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applogger "github.com/avivreu7/medabrimbis/internal/infra/logger"
)

// Connect opens the database behind the DSN: postgres for postgres:// style
// DSNs, sqlite for file paths (the dev default).
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn required")
	}
	if isPostgresDSN(dsn) {
		return connectPostgres(ctx, dsn)
	}
	return connectSQLite(ctx, dsn)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// zerologWriter adapts zerolog.Logger to the gorm logger.Writer interface.
type zerologWriter struct {
	logger zerolog.Logger
}

func (w *zerologWriter) Printf(format string, v ...interface{}) {
	w.logger.Warn().Msg(fmt.Sprintf(format, v...))
}

func gormLogger() logger.Interface {
	writer := &zerologWriter{logger: applogger.Logger.With().Str("component", "gorm").Logger()}

	return logger.New(writer, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func connectPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying db: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		if err := sqlDB.PingContext(pingCtx); err == nil {
			return gormDB, nil
		}
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}

	_ = sqlDB.Close()
	return nil, fmt.Errorf("ping database: failed after %d retries", maxRetries)
}

func connectSQLite(ctx context.Context, dsn string) (*gorm.DB, error) {
	if err := ensureDirectory(dsn); err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying db: %w", err)
	}

	// SQLite handles one writer; a single connection avoids SQLITE_BUSY.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return gormDB, nil
}

func ensureDirectory(dsn string) error {
	path := sqliteFilePath(dsn)
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}
	return nil
}

func sqliteFilePath(dsn string) string {
	if dsn == ":memory:" {
		return ""
	}

	trimmed := strings.TrimPrefix(dsn, "file:")
	trimmed = strings.TrimPrefix(trimmed, "//")

	if idx := strings.IndexRune(trimmed, '?'); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	if trimmed == "" || trimmed == ":memory:" {
		return ""
	}

	return trimmed
}
