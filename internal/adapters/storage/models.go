package storage

import "time"

// PhaseRecordModel is the GORM model for the phase_records table
type PhaseRecordModel struct {
	CreatedAt      time.Time
	ElapsedSeconds float64   `gorm:"not null;default:0"`
	EndedAt        time.Time `gorm:"not null;index:idx_ended_at"`
	ID             string    `gorm:"primaryKey"`
	Outcome        string    `gorm:"not null;check:outcome IN ('completed','skipped','stopped')"`
	Phase          string    `gorm:"not null;check:phase IN ('work','break','long_break')"`
	PlannedSeconds float64   `gorm:"not null;default:0"`
	SessionCount   int       `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (PhaseRecordModel) TableName() string { return "phase_records" }
