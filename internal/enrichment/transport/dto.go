package transport

import "time"

// PendingItem is one opportunity awaiting a brief.
type PendingItem struct {
	OpportunityID int64   `json:"opportunityId"`
	NoticeID      string  `json:"noticeId"`
	Title         string  `json:"title"`
	BriefStatus   *string `json:"briefStatus"`
}

// TextResponse carries the truncated enrichment source text.
type TextResponse struct {
	OpportunityID int64  `json:"opportunityId"`
	Text          string `json:"text"`
}

// BriefRequest saves a generated brief.
type BriefRequest struct {
	Brief string `json:"brief" validate:"required,max=50000"`
	Model string `json:"model" validate:"omitempty,max=200"`
}

// ResetRequest moves a brief back to pending or failed.
type ResetRequest struct {
	Status string `json:"status" validate:"required,oneof=pending failed"`
}

// BriefResponse mirrors the stored brief.
type BriefResponse struct {
	OpportunityID int64     `json:"opportunityId"`
	Status        string    `json:"status"`
	Brief         *string   `json:"brief"`
	Model         *string   `json:"model"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
