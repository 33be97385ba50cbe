package transport

import "time"

// ProfileRequest carries the full profile on update; omitted optional fields
// clear their stored values.
type ProfileRequest struct {
	IncludeKeywords  *string `json:"includeKeywords" validate:"omitempty,max=2000"`
	ExcludeKeywords  *string `json:"excludeKeywords" validate:"omitempty,max=2000"`
	IncludeAgencies  *string `json:"includeAgencies" validate:"omitempty,max=2000"`
	ExcludeAgencies  *string `json:"excludeAgencies" validate:"omitempty,max=2000"`
	MinDaysOut       *int    `json:"minDaysOut" validate:"omitempty,min=0,max=365"`
	MaxDaysOut       *int    `json:"maxDaysOut" validate:"omitempty,min=0,max=365"`
	CategoryCodes    *string `json:"categoryCodes" validate:"omitempty,max=500"`
	LookbackDays     *int    `json:"lookbackDays" validate:"omitempty,min=1,max=90"`
	DigestMaxItems   int     `json:"digestMaxItems" validate:"omitempty,min=1,max=100"`
	DigestRecipients *string `json:"digestRecipients" validate:"omitempty,max=2000"`
	DigestTimeLocal  *string `json:"digestTimeLocal" validate:"omitempty,max=20"`
}

// ProfileResponse mirrors the stored profile.
type ProfileResponse struct {
	IncludeKeywords  *string   `json:"includeKeywords"`
	ExcludeKeywords  *string   `json:"excludeKeywords"`
	IncludeAgencies  *string   `json:"includeAgencies"`
	ExcludeAgencies  *string   `json:"excludeAgencies"`
	MinDaysOut       *int      `json:"minDaysOut"`
	MaxDaysOut       *int      `json:"maxDaysOut"`
	CategoryCodes    *string   `json:"categoryCodes"`
	LookbackDays     *int      `json:"lookbackDays"`
	DigestMaxItems   int       `json:"digestMaxItems"`
	DigestRecipients *string   `json:"digestRecipients"`
	DigestTimeLocal  *string   `json:"digestTimeLocal"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
