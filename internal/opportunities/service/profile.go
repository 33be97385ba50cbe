package service

import (
	"strings"
	"time"

	identityrepo "bidlens_backend/internal/identity/repository"
	"bidlens_backend/internal/opportunities/repository"
)

// MatchesProfile reports whether an opportunity passes the organization's
// filter preferences. A nil profile, or a profile with no filters set, passes
// everything. Keyword filters match case-insensitively against title and
// description; agency filters against the issuing agency.
func MatchesProfile(opp *repository.Opportunity, profile *identityrepo.Profile, today time.Time) bool {
	if profile == nil {
		return true
	}

	text := strings.ToLower(opp.Title)
	if opp.Description != nil {
		text += " " + strings.ToLower(*opp.Description)
	}
	agency := strings.ToLower(opp.Agency)

	if include := splitTerms(profile.IncludeKeywords); len(include) > 0 && !containsAny(text, include) {
		return false
	}
	if containsAny(text, splitTerms(profile.ExcludeKeywords)) {
		return false
	}
	if include := splitTerms(profile.IncludeAgencies); len(include) > 0 && !containsAny(agency, include) {
		return false
	}
	if containsAny(agency, splitTerms(profile.ExcludeAgencies)) {
		return false
	}

	if profile.MinDaysOut != nil || profile.MaxDaysOut != nil {
		days := daysUntil(opp.ResponseDeadline, today)
		if profile.MinDaysOut != nil && days < *profile.MinDaysOut {
			return false
		}
		if profile.MaxDaysOut != nil && days > *profile.MaxDaysOut {
			return false
		}
	}

	return true
}

// splitTerms parses a comma-separated filter list into lowercase terms.
func splitTerms(raw *string) []string {
	if raw == nil {
		return nil
	}
	var terms []string
	for _, part := range strings.Split(*raw, ",") {
		if term := strings.ToLower(strings.TrimSpace(part)); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func containsAny(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

func daysUntil(deadline, today time.Time) int {
	d := deadline.Truncate(24 * time.Hour)
	t := today.Truncate(24 * time.Hour)
	return int(d.Sub(t).Hours() / 24)
}
