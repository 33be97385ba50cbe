package transport

import "time"

// RunRequest optionally overrides the configured category codes and lookback
// window for one manual run.
type RunRequest struct {
	CategoryCodes []string `json:"categoryCodes" validate:"omitempty,dive,min=2,max=10"`
	LookbackDays  int      `json:"lookbackDays" validate:"omitempty,min=1,max=90"`
}

// RunListItem is one past ingestion run.
type RunListItem struct {
	ID         int64      `json:"id"`
	Source     string     `json:"source"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
	Inserted   int        `json:"inserted"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Filtered   int        `json:"filtered"`
	Errors     int        `json:"errors"`
}
