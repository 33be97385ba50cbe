package service

import (
	"context"
	"errors"
	"fmt"

	"bidlens_backend/internal/ingestion/repository"
)

// Outcome classifies what the upsert engine did with one canonical record.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
	// OutcomeSkipped covers both an unchanged existing row and the losing
	// side of a concurrent insert race.
	OutcomeSkipped Outcome = "skipped"
)

// Upsert writes one canonical record through the store. Missing rows are
// inserted; existing rows are updated only when a field actually changed, so
// an idempotent re-run leaves upserted_at untouched. Optional fields merge:
// an incoming nil never erases a stored value.
func Upsert(ctx context.Context, store repository.Store, c *Canonical) (Outcome, error) {
	existing, err := store.GetByNoticeID(ctx, c.NoticeID)
	if err != nil {
		return "", err
	}

	if existing == nil {
		opp := &repository.Opportunity{
			NoticeID:         c.NoticeID,
			Title:            c.Title,
			Agency:           c.Agency,
			Type:             c.Type,
			PostedDate:       c.PostedDate,
			ResponseDeadline: c.ResponseDeadline,
			CategoryCode:     c.CategoryCode,
			SetAside:         c.SetAside,
			Description:      c.Description,
			SourceURL:        c.SourceURL,
		}
		if err := store.Insert(ctx, opp); err != nil {
			if errors.Is(err, repository.ErrDuplicateNotice) {
				return OutcomeSkipped, nil
			}
			return "", fmt.Errorf("upsert %s: %w", c.NoticeID, err)
		}
		return OutcomeInserted, nil
	}

	if !merge(existing, c) {
		return OutcomeSkipped, nil
	}

	if err := store.Update(ctx, existing); err != nil {
		return "", fmt.Errorf("upsert %s: %w", c.NoticeID, err)
	}
	return OutcomeUpdated, nil
}

// merge applies the canonical record onto the stored row in place and reports
// whether anything changed.
func merge(opp *repository.Opportunity, c *Canonical) bool {
	changed := false

	if opp.Title != c.Title {
		opp.Title = c.Title
		changed = true
	}
	if opp.Agency != c.Agency {
		opp.Agency = c.Agency
		changed = true
	}
	if opp.Type != c.Type {
		opp.Type = c.Type
		changed = true
	}
	if !opp.PostedDate.Equal(c.PostedDate) {
		opp.PostedDate = c.PostedDate
		changed = true
	}
	if !opp.ResponseDeadline.Equal(c.ResponseDeadline) {
		opp.ResponseDeadline = c.ResponseDeadline
		changed = true
	}
	if opp.SourceURL != c.SourceURL {
		opp.SourceURL = c.SourceURL
		changed = true
	}
	if mergeOptional(&opp.CategoryCode, c.CategoryCode) {
		changed = true
	}
	if mergeOptional(&opp.SetAside, c.SetAside) {
		changed = true
	}
	if mergeOptional(&opp.Description, c.Description) {
		changed = true
	}

	return changed
}

// mergeOptional overwrites dst only with a non-nil incoming value that
// differs from what is stored.
func mergeOptional(dst **string, incoming *string) bool {
	if incoming == nil {
		return false
	}
	if *dst != nil && **dst == *incoming {
		return false
	}
	v := *incoming
	*dst = &v
	return true
}
