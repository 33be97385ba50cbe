package service

import (
	"testing"
	"time"
)

func validRecord() map[string]any {
	return map[string]any{
		"noticeId":         "SAM-001",
		"title":            "Management Consulting Support",
		"department":       "DEPT OF DEFENSE",
		"type":             "Solicitation",
		"postedDate":       "2026-01-05",
		"responseDeadLine": "2026-02-01T17:00:00Z",
		"naics":            "541611",
		"typeOfSetAside":   "SBA",
		"uiLink":           "https://sam.gov/opp/SAM-001/view",
		"description":      "Scope of work attached.",
	}
}

func TestNormalize_FullRecord(t *testing.T) {
	c, reason := Normalize(validRecord(), nil)
	if reason != RejectNone {
		t.Fatalf("reason = %v, want RejectNone", reason)
	}
	if c.NoticeID != "SAM-001" {
		t.Errorf("NoticeID = %q", c.NoticeID)
	}
	if c.Agency != "DEPT OF DEFENSE" {
		t.Errorf("Agency = %q", c.Agency)
	}
	if got := c.PostedDate.Format("2006-01-02"); got != "2026-01-05" {
		t.Errorf("PostedDate = %s", got)
	}
	if !c.ResponseDeadline.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ResponseDeadline = %v", c.ResponseDeadline)
	}
	if c.CategoryCode == nil || *c.CategoryCode != "541611" {
		t.Errorf("CategoryCode = %v", c.CategoryCode)
	}
	if c.Description == nil || *c.Description != "Scope of work attached." {
		t.Errorf("Description = %v", c.Description)
	}
}

func TestNormalize_TimestampedDatesReducedToCalendarDates(t *testing.T) {
	rec := validRecord()
	rec["postedDate"] = "2026-01-05T10:00:00-0500"
	rec["responseDeadLine"] = "2026-02-01T17:00:00Z"

	c, reason := Normalize(rec, nil)
	if reason != RejectNone {
		t.Fatalf("reason = %v, want RejectNone", reason)
	}
	if !c.PostedDate.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PostedDate = %v, want 2026-01-05 midnight UTC", c.PostedDate)
	}
	if !c.ResponseDeadline.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ResponseDeadline = %v, want 2026-02-01 midnight UTC", c.ResponseDeadline)
	}
}

func TestNormalize_AliasFallbacks(t *testing.T) {
	rec := map[string]any{
		"noticeID":           "SAM-002",
		"solicitationTitle":  "Energy Audit Services",
		"fullParentPathName": "GSA.REGION 4",
		"noticeType":         "Sources Sought",
		"publishDate":        "2026-01-06T09:30:00Z",
		"responseDeadline":   "2026-01-20",
		"naicsCode":          "541690",
		"setAsideCode":       "WOSB",
		"resourceLink":       "https://sam.gov/opp/SAM-002/view",
	}

	c, reason := Normalize(rec, nil)
	if reason != RejectNone {
		t.Fatalf("reason = %v, want RejectNone", reason)
	}
	if c.NoticeID != "SAM-002" {
		t.Errorf("NoticeID = %q", c.NoticeID)
	}
	if c.Title != "Energy Audit Services" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.Agency != "GSA.REGION 4" {
		t.Errorf("Agency = %q", c.Agency)
	}
	if c.Type != "Sources Sought" {
		t.Errorf("Type = %q", c.Type)
	}
	if c.SetAside == nil || *c.SetAside != "WOSB" {
		t.Errorf("SetAside = %v", c.SetAside)
	}
	if c.SourceURL != "https://sam.gov/opp/SAM-002/view" {
		t.Errorf("SourceURL = %q", c.SourceURL)
	}
}

func TestNormalize_AliasOrderWins(t *testing.T) {
	rec := validRecord()
	rec["noticeID"] = "SHOULD-LOSE"
	rec["id"] = "ALSO-LOSES"

	c, _ := Normalize(rec, nil)
	if c.NoticeID != "SAM-001" {
		t.Errorf("NoticeID = %q, want first alias to win", c.NoticeID)
	}
}

func TestNormalize_TypeFiltered(t *testing.T) {
	rec := validRecord()
	rec["type"] = "Award Notice"

	c, reason := Normalize(rec, nil)
	if c != nil {
		t.Fatal("expected nil record")
	}
	if reason != RejectFiltered {
		t.Errorf("reason = %v, want RejectFiltered", reason)
	}
}

func TestNormalize_CustomAllowedTypes(t *testing.T) {
	rec := validRecord()
	rec["type"] = "Award Notice"

	allowed := map[string]struct{}{"Award Notice": {}}
	if _, reason := Normalize(rec, allowed); reason != RejectNone {
		t.Errorf("reason = %v, want RejectNone with custom filter", reason)
	}
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	for _, key := range []string{"noticeId", "title", "department", "type", "postedDate", "responseDeadLine", "uiLink"} {
		rec := validRecord()
		delete(rec, key)

		c, reason := Normalize(rec, nil)
		if c != nil {
			t.Errorf("missing %s: expected nil record", key)
		}
		if reason != RejectMissing {
			t.Errorf("missing %s: reason = %v, want RejectMissing", key, reason)
		}
	}
}

func TestNormalize_UnparseableDateRejected(t *testing.T) {
	rec := validRecord()
	rec["postedDate"] = "sometime next week"

	if _, reason := Normalize(rec, nil); reason != RejectMissing {
		t.Errorf("reason = %v, want RejectMissing for bad posted date", reason)
	}
}

func TestNormalize_BadDeadlineRejected(t *testing.T) {
	rec := validRecord()
	rec["responseDeadLine"] = "TBD"

	if _, reason := Normalize(rec, nil); reason != RejectMissing {
		t.Errorf("reason = %v, want RejectMissing for unparseable deadline", reason)
	}
}

func TestNormalize_NonStringDescriptionDropped(t *testing.T) {
	rec := validRecord()
	rec["description"] = map[string]any{"link": "https://api.sam.gov/desc/1"}

	c, reason := Normalize(rec, nil)
	if reason != RejectNone {
		t.Fatalf("reason = %v, want RejectNone", reason)
	}
	if c.Description != nil {
		t.Errorf("Description = %v, want nil for non-string value", c.Description)
	}
}

func TestNormalize_WhitespaceOnlyTreatedAsMissing(t *testing.T) {
	rec := validRecord()
	rec["title"] = "   "
	delete(rec, "solicitationTitle")

	if _, reason := Normalize(rec, nil); reason != RejectMissing {
		t.Errorf("reason = %v, want RejectMissing for blank title", reason)
	}
}
