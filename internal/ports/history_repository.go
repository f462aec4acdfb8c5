package ports

import (
	"context"
	"time"

	"tomat/internal/domain"
)

// HistoryWriter records phases as they end
type HistoryWriter interface {
	Record(ctx context.Context, record domain.PhaseRecord, endedAt time.Time) error
}

// HistoryReader reads the recorded phases back
type HistoryReader interface {
	List(ctx context.Context, since time.Time) ([]domain.HistoryEntry, error)
	DailySummaries(ctx context.Context, since time.Time) ([]domain.DaySummary, error)
}

// HistoryRepository combines all history operations
type HistoryRepository interface {
	HistoryReader
	HistoryWriter
	Close() error
}
