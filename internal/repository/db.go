package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"household-planner/internal/model"
)

const defaultDSN = "household_planner.db"

// NewDB opens the household database and migrates members, tasks and the
// star ledger. The HTTP API and the bot write concurrently, so file
// databases get a busy timeout and WAL journaling.
func NewDB(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = defaultDSN
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(withPragmas(dsn)), &gorm.Config{
		Logger: gormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}

	log.Debug().Str("dsn", dsn).Msg("database ready")
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Member{}, &model.Task{}, &model.StarEntry{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// gormLogger routes gorm through zerolog; SQL traces only at debug and below.
func gormLogger(log zerolog.Logger) logger.Interface {
	level := logger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		level = logger.Info
	}
	dbLog := log.With().Str("component", "gorm").Logger()
	return logger.New(&dbLog, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// withPragmas appends go-sqlite3 connection parameters the caller did not set.
func withPragmas(dsn string) string {
	params := []string{"_busy_timeout=5000", "_foreign_keys=on"}
	if !isMemoryDSN(dsn) {
		params = append(params, "_journal_mode=WAL")
	}
	for _, p := range params {
		key := p[:strings.IndexByte(p, '=')]
		if strings.Contains(dsn, key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p
	}
	return dsn
}

func ensureDirForSQLite(dsn string) error {
	if isMemoryDSN(dsn) {
		return nil
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
