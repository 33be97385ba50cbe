package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"bidlens_backend/internal/enrichment/repository"
	"bidlens_backend/platform/apperr"
	"bidlens_backend/platform/logger"
)

// Service provides the enrichment-brief workflow consumed by the external
// brief generator.
type Service struct {
	repo    repository.Repository
	textCap int
	log     *logger.Logger
}

// New creates a new enrichment service. textCap bounds the source text
// returned to the generator.
func New(repo repository.Repository, textCap int, log *logger.Logger) *Service {
	if textCap <= 0 {
		textCap = 8000
	}
	return &Service{repo: repo, textCap: textCap, log: log}
}

// Pending lists opportunities awaiting a brief.
func (s *Service) Pending(ctx context.Context, limit int) ([]repository.PendingItem, error) {
	return s.repo.ListPending(ctx, limit)
}

// Text composes the enrichment source text for one opportunity, truncated to
// the configured character cap.
func (s *Service) Text(ctx context.Context, oppID int64) (string, error) {
	src, err := s.repo.GetSourceText(ctx, oppID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", src.Title)
	fmt.Fprintf(&b, "Agency: %s\n", src.Agency)
	fmt.Fprintf(&b, "Type: %s\n", src.Type)
	if src.SetAside != nil {
		fmt.Fprintf(&b, "Set-aside: %s\n", *src.SetAside)
	}
	fmt.Fprintf(&b, "Response deadline: %s\n", src.Deadline.Format("2006-01-02"))
	if src.Description != nil {
		fmt.Fprintf(&b, "\n%s", *src.Description)
	}

	text := b.String()
	if len(text) > s.textCap {
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := s.textCap
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text, nil
}

// SaveBrief stores a generated brief with status ok.
func (s *Service) SaveBrief(ctx context.Context, oppID int64, brief, model string) (*repository.Brief, error) {
	if strings.TrimSpace(brief) == "" {
		return nil, apperr.Validation("brief must not be empty")
	}
	if _, err := s.repo.GetSourceText(ctx, oppID); err != nil {
		return nil, err
	}
	if err := s.repo.SaveBrief(ctx, oppID, brief, model); err != nil {
		return nil, err
	}
	return s.repo.GetBrief(ctx, oppID)
}

// Reset moves a brief back to pending or failed.
func (s *Service) Reset(ctx context.Context, oppID int64, status string) (*repository.Brief, error) {
	if status != repository.StatusPending && status != repository.StatusFailed {
		return nil, apperr.Validation("status must be pending or failed")
	}
	if _, err := s.repo.GetSourceText(ctx, oppID); err != nil {
		return nil, err
	}
	if err := s.repo.ResetBrief(ctx, oppID, status); err != nil {
		return nil, err
	}
	return s.repo.GetBrief(ctx, oppID)
}
