package service

import (
	"testing"
	"time"

	identityrepo "bidlens_backend/internal/identity/repository"
	"bidlens_backend/internal/opportunities/repository"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func sampleOpp() *repository.Opportunity {
	return &repository.Opportunity{
		Title:            "IT Modernization Advisory Services",
		Agency:           "DEPT OF ENERGY",
		Description:      strptr("Cloud migration and security assessment support."),
		ResponseDeadline: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

var today = time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

func TestMatchesProfile_NilProfilePassesEverything(t *testing.T) {
	if !MatchesProfile(sampleOpp(), nil, today) {
		t.Error("nil profile should pass everything")
	}
	if !MatchesProfile(sampleOpp(), &identityrepo.Profile{}, today) {
		t.Error("empty profile should pass everything")
	}
}

func TestMatchesProfile_IncludeKeywords(t *testing.T) {
	p := &identityrepo.Profile{IncludeKeywords: strptr("cloud, cyber")}
	if !MatchesProfile(sampleOpp(), p, today) {
		t.Error("description mentions cloud, should match")
	}

	p.IncludeKeywords = strptr("janitorial")
	if MatchesProfile(sampleOpp(), p, today) {
		t.Error("no include keyword present, should not match")
	}
}

func TestMatchesProfile_ExcludeKeywords(t *testing.T) {
	p := &identityrepo.Profile{ExcludeKeywords: strptr("security")}
	if MatchesProfile(sampleOpp(), p, today) {
		t.Error("excluded keyword present in description, should not match")
	}
}

func TestMatchesProfile_AgencyFilters(t *testing.T) {
	p := &identityrepo.Profile{IncludeAgencies: strptr("energy")}
	if !MatchesProfile(sampleOpp(), p, today) {
		t.Error("agency include should match case-insensitively")
	}

	p = &identityrepo.Profile{ExcludeAgencies: strptr("energy")}
	if MatchesProfile(sampleOpp(), p, today) {
		t.Error("agency exclude should reject")
	}

	p = &identityrepo.Profile{IncludeAgencies: strptr("defense, interior")}
	if MatchesProfile(sampleOpp(), p, today) {
		t.Error("no listed agency matches, should reject")
	}
}

func TestMatchesProfile_DeadlineWindow(t *testing.T) {
	// Deadline is 21 days out from the fixed today.
	cases := []struct {
		name string
		min  *int
		max  *int
		want bool
	}{
		{"inside window", intptr(7), intptr(30), true},
		{"below min", intptr(30), nil, false},
		{"above max", nil, intptr(14), false},
		{"exactly min", intptr(21), nil, true},
		{"exactly max", nil, intptr(21), true},
	}

	for _, tc := range cases {
		p := &identityrepo.Profile{MinDaysOut: tc.min, MaxDaysOut: tc.max}
		if got := MatchesProfile(sampleOpp(), p, today); got != tc.want {
			t.Errorf("%s: MatchesProfile = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMatchesProfile_BlankTermsIgnored(t *testing.T) {
	p := &identityrepo.Profile{IncludeKeywords: strptr(" , ,")}
	if !MatchesProfile(sampleOpp(), p, today) {
		t.Error("blank terms should filter nothing")
	}
}
