package service

import (
	"strings"
	"time"
)

// Canonical is a feed record reduced to the fields the rest of the system
// cares about, with required fields validated and dates parsed.
type Canonical struct {
	NoticeID         string
	Title            string
	Agency           string
	Type             string
	PostedDate       time.Time
	ResponseDeadline time.Time
	CategoryCode     *string
	SetAside         *string
	Description      *string
	SourceURL        string
}

// RejectReason classifies why a raw record was dropped during normalization.
type RejectReason int

const (
	RejectNone RejectReason = iota
	// RejectFiltered means the notice type is not in the allowed set.
	RejectFiltered
	// RejectMissing means a required field is absent or unparseable.
	RejectMissing
)

// DefaultAllowedTypes is the notice-type filter applied when the caller does
// not supply one.
var DefaultAllowedTypes = map[string]struct{}{
	"Solicitation":                   {},
	"Combined Synopsis/Solicitation": {},
	"Sources Sought":                 {},
	"Special Notice":                 {},
	"RFI":                            {},
	"Presolicitation":                {},
}

// Alias lists are ordered: the first key present with a non-empty string
// value wins. The upstream feed has shipped all of these spellings.
var (
	noticeIDKeys  = []string{"noticeId", "noticeID", "id"}
	titleKeys     = []string{"title", "solicitationTitle", "fullTitle"}
	agencyKeys    = []string{"department", "organizationName", "fullParentPathName"}
	typeKeys      = []string{"type", "noticeType", "opportunityType"}
	postedKeys    = []string{"postedDate", "publishDate"}
	deadlineKeys  = []string{"responseDeadLine", "responseDeadline"}
	categoryKeys  = []string{"naics", "naicsCode"}
	setAsideKeys  = []string{"typeOfSetAside", "setAside", "setAsideCode"}
	sourceURLKeys = []string{"uiLink", "link", "resourceLink"}
)

// Normalize maps a raw feed record onto the canonical shape. A nil result
// carries a reason: RejectFiltered when the notice type is outside
// allowedTypes, RejectMissing when a required field is absent. Unparseable
// dates count as missing rather than being guessed at.
func Normalize(rec map[string]any, allowedTypes map[string]struct{}) (*Canonical, RejectReason) {
	if allowedTypes == nil {
		allowedTypes = DefaultAllowedTypes
	}

	noticeID := firstString(rec, noticeIDKeys)
	title := firstString(rec, titleKeys)
	agency := firstString(rec, agencyKeys)
	noticeType := firstString(rec, typeKeys)

	if noticeType == "" {
		return nil, RejectMissing
	}
	if _, ok := allowedTypes[noticeType]; !ok {
		return nil, RejectFiltered
	}
	if noticeID == "" || title == "" || agency == "" {
		return nil, RejectMissing
	}

	posted, ok := parseFeedDate(firstString(rec, postedKeys))
	if !ok {
		return nil, RejectMissing
	}
	deadline, ok := parseFeedDate(firstString(rec, deadlineKeys))
	if !ok {
		return nil, RejectMissing
	}
	sourceURL := firstString(rec, sourceURLKeys)
	if sourceURL == "" {
		return nil, RejectMissing
	}

	c := &Canonical{
		NoticeID:         noticeID,
		Title:            title,
		Agency:           agency,
		Type:             noticeType,
		PostedDate:       posted,
		ResponseDeadline: deadline,
		SourceURL:        sourceURL,
	}

	if v := firstString(rec, categoryKeys); v != "" {
		c.CategoryCode = &v
	}
	if v := firstString(rec, setAsideKeys); v != "" {
		c.SetAside = &v
	}
	// Descriptions sometimes arrive as nested objects or resource links;
	// only plain strings are kept.
	if v, isStr := rec["description"].(string); isStr && strings.TrimSpace(v) != "" {
		v = strings.TrimSpace(v)
		c.Description = &v
	}

	return c, RejectNone
}

func firstString(rec map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := rec[k].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

var feedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseFeedDate accepts the feed's mix of ISO timestamps (with or without
// zone, sometimes a bare trailing Z) and plain dates. The result is always
// the calendar date at midnight UTC: posted_date and response_deadline are
// DATE columns, and keeping a time-of-day here would make every re-run of a
// timestamped record look changed after the round-trip through the database.
func parseFeedDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return calendarDate(t), true
		}
	}
	// e.g. "2026-01-05T10:00:00Z" already matches RFC3339; some records ship
	// "2026-01-05T10:00:00-0500" without the colon in the offset.
	if t, err := time.Parse("2006-01-02T15:04:05-0700", raw); err == nil {
		return calendarDate(t), true
	}
	return time.Time{}, false
}

// calendarDate truncates to the date in the timestamp's own zone.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
