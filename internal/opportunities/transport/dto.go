package transport

import (
	"time"

	"bidlens_backend/internal/opportunities/service"
)

// OpportunityItem is one opportunity with its per-org overlays.
type OpportunityItem struct {
	ID               int64              `json:"id"`
	NoticeID         string             `json:"noticeId"`
	Title            string             `json:"title"`
	Agency           string             `json:"agency"`
	Type             string             `json:"type"`
	PostedDate       time.Time          `json:"postedDate"`
	ResponseDeadline time.Time          `json:"responseDeadline"`
	CategoryCode     *string            `json:"categoryCode"`
	SetAside         *string            `json:"setAside"`
	Description      *string            `json:"description"`
	SourceURL        string             `json:"sourceUrl"`
	State            string             `json:"state"`
	CallerVote       *string            `json:"callerVote"`
	DaysUntilDue     int                `json:"daysUntilDue"`
	Workspace        *WorkspaceResponse `json:"workspace,omitempty"`
}

// WorkspaceResponse mirrors the org's annotations on one opportunity.
type WorkspaceResponse struct {
	InternalDeadline *time.Time `json:"internalDeadline"`
	Notes            *string    `json:"notes"`
}

// FeedResponse is one page of the feed view.
type FeedResponse struct {
	Items   []OpportunityItem `json:"items"`
	Total   int               `json:"total"`
	HasMore bool              `json:"hasMore"`
}

// CalendarResponse groups saved opportunities by month and week.
type CalendarResponse struct {
	Months []CalendarMonth `json:"months"`
}

// CalendarMonth is one month of the deadline calendar.
type CalendarMonth struct {
	Month string         `json:"month"`
	Weeks []CalendarWeek `json:"weeks"`
}

// CalendarWeek is one week within a calendar month.
type CalendarWeek struct {
	Week  int               `json:"week"`
	Items []OpportunityItem `json:"items"`
}

// WorkspaceRequest replaces the org's annotations. A null internal deadline
// or notes clears the stored value.
type WorkspaceRequest struct {
	InternalDeadline *string `json:"internalDeadline" validate:"omitempty,datetime=2006-01-02"`
	Notes            *string `json:"notes" validate:"omitempty,max=10000"`
}

// FromItem maps a service item onto the wire shape.
func FromItem(item *service.Item) OpportunityItem {
	out := OpportunityItem{
		ID:               item.ID,
		NoticeID:         item.NoticeID,
		Title:            item.Title,
		Agency:           item.Agency,
		Type:             item.Type,
		PostedDate:       item.PostedDate,
		ResponseDeadline: item.ResponseDeadline,
		CategoryCode:     item.CategoryCode,
		SetAside:         item.SetAside,
		Description:      item.Description,
		SourceURL:        item.SourceURL,
		State:            item.State,
		CallerVote:       item.CallerVote,
		DaysUntilDue:     item.DaysUntilDue,
	}
	if item.Workspace != nil {
		out.Workspace = &WorkspaceResponse{
			InternalDeadline: item.Workspace.InternalDeadline,
			Notes:            item.Workspace.Notes,
		}
	}
	return out
}

// FromItems maps a slice of service items.
func FromItems(items []service.Item) []OpportunityItem {
	out := make([]OpportunityItem, 0, len(items))
	for i := range items {
		out = append(out, FromItem(&items[i]))
	}
	return out
}
