package storage

import (
	"time"

	"github.com/google/uuid"

	"tomat/internal/domain"
)

// phaseRecordToModel converts a domain.PhaseRecord to PhaseRecordModel (GORM)
func phaseRecordToModel(r domain.PhaseRecord, endedAt time.Time) PhaseRecordModel {
	return PhaseRecordModel{
		ElapsedSeconds: r.Elapsed.Seconds(),
		EndedAt:        endedAt.UTC(),
		ID:             uuid.NewString(),
		Outcome:        string(r.Outcome),
		Phase:          string(r.Phase),
		PlannedSeconds: r.Planned.Seconds(),
		SessionCount:   r.SessionCount,
	}
}

// phaseRecordModelToDomain converts a PhaseRecordModel (GORM) to domain.HistoryEntry
func phaseRecordModelToDomain(m PhaseRecordModel) domain.HistoryEntry {
	return domain.HistoryEntry{
		EndedAt:      m.EndedAt.Local(),
		Elapsed:      secondsToDuration(m.ElapsedSeconds),
		ID:           m.ID,
		Outcome:      domain.Outcome(m.Outcome),
		Phase:        domain.Phase(m.Phase),
		Planned:      secondsToDuration(m.PlannedSeconds),
		SessionCount: m.SessionCount,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
