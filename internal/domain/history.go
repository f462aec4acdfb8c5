package domain

import "time"

// HistoryEntry is one recorded phase
type HistoryEntry struct {
	EndedAt      time.Time
	Elapsed      time.Duration
	ID           string
	Outcome      Outcome
	Phase        Phase
	Planned      time.Duration
	SessionCount int
}

// DaySummary aggregates one calendar day of history
type DaySummary struct {
	BreakTime     time.Duration
	CompletedWork int
	Day           time.Time
	FocusTime     time.Duration
	SkippedPhases int
	StoppedPhases int
}
