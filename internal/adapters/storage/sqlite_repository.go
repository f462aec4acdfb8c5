package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tomat/internal/domain"
	"tomat/internal/logging"
	"tomat/internal/paths"
	"tomat/internal/ports"
)

// SQLiteRepository implements ports.HistoryRepository using GORM
type SQLiteRepository struct {
	db *gorm.DB
}

// Verify interface compliance at compile time
var _ ports.HistoryRepository = (*SQLiteRepository)(nil)

// gormLogger wraps the tomat logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error", "error", err, "duration", elapsed, "sql", sql, "rows", rows)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query", "duration", elapsed, "sql", sql, "rows", rows)
	} else {
		logging.Logger.Debug("gorm query", "duration", elapsed, "sql", sql, "rows", rows)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("TOMAT_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteRepository opens (and migrates) the history database at dbPath
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dbPath = paths.ExpandPath(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:      newGormLogger(),
		NowFunc:     func() time.Time { return time.Now().UTC() },
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// CLI readers may open the file while the daemon writes to it
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&PhaseRecordModel{}); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("failed to migrate phase_records schema: %w", err)
		}
	}

	logging.Logger.Debug("History database opened", "path", dbPath)
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record implements HistoryWriter.Record
func (r *SQLiteRepository) Record(ctx context.Context, record domain.PhaseRecord, endedAt time.Time) error {
	model := phaseRecordToModel(record, endedAt)
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
	if err != nil {
		return fmt.Errorf("failed to record phase: %w", err)
	}
	return nil
}

// List implements HistoryReader.List, oldest first
func (r *SQLiteRepository) List(ctx context.Context, since time.Time) ([]domain.HistoryEntry, error) {
	var models []PhaseRecordModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("ended_at >= ?", since.UTC()).
			Order("ended_at ASC").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, phaseRecordModelToDomain(m))
	}
	return entries, nil
}

// DailySummaries implements HistoryReader.DailySummaries.
// Days are local calendar days, oldest first; days without records are omitted.
func (r *SQLiteRepository) DailySummaries(ctx context.Context, since time.Time) ([]domain.DaySummary, error) {
	entries, err := r.List(ctx, since)
	if err != nil {
		return nil, err
	}
	return summarize(entries), nil
}

func summarize(entries []domain.HistoryEntry) []domain.DaySummary {
	var summaries []domain.DaySummary
	for _, e := range entries {
		y, m, d := e.EndedAt.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, e.EndedAt.Location())

		if len(summaries) == 0 || !summaries[len(summaries)-1].Day.Equal(day) {
			summaries = append(summaries, domain.DaySummary{Day: day})
		}
		s := &summaries[len(summaries)-1]

		if e.Phase == domain.PhaseWork {
			s.FocusTime += e.Elapsed
			if e.Outcome == domain.OutcomeCompleted {
				s.CompletedWork++
			}
		} else {
			s.BreakTime += e.Elapsed
		}

		switch e.Outcome {
		case domain.OutcomeSkipped:
			s.SkippedPhases++
		case domain.OutcomeStopped:
			s.StoppedPhases++
		}
	}
	return summaries
}

// withRetry retries on SQLITE_BUSY/SQLITE_LOCKED with a linear backoff
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
