package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"bidlens_backend/internal/decisions/statemachine"
	identityrepo "bidlens_backend/internal/identity/repository"
	"bidlens_backend/internal/opportunities/repository"
	"bidlens_backend/platform/apperr"
	"bidlens_backend/platform/logger"
)

// Tab identifiers for the feed view.
const (
	TabSolicitations = "solicitations"
	TabRFI           = "rfi"
)

// defaultFeedLimit caps the feed view unless the caller asks for everything.
const defaultFeedLimit = 20

// typeGroups maps a feed tab onto the opportunity types it shows.
var typeGroups = map[string][]string{
	TabSolicitations: {"Solicitation", "Combined Synopsis/Solicitation", "Award Notice"},
	TabRFI:           {"RFI", "Sources Sought", "Special Notice", "Pre-Solicitation"},
}

// ProfileSource loads an organization's filter profile. Satisfied by the
// identity repository.
type ProfileSource interface {
	GetProfile(ctx context.Context, orgID uuid.UUID) (*identityrepo.Profile, error)
}

// Item is one opportunity with its per-org and per-caller overlays.
type Item struct {
	repository.Opportunity
	State        string
	CallerVote   *string
	DaysUntilDue int
	Workspace    *repository.Workspace
}

// FeedPage is one page of the feed view.
type FeedPage struct {
	Items   []Item
	Total   int
	HasMore bool
}

// CalendarWeek groups saved opportunities within one week of a month.
type CalendarWeek struct {
	Week  int
	Items []Item
}

// CalendarMonth groups saved opportunities by display-date month.
type CalendarMonth struct {
	Month string
	Weeks []CalendarWeek
}

// Service provides the org-scoped opportunity views.
type Service struct {
	repo     repository.Repository
	profiles ProfileSource
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new opportunities service.
func New(repo repository.Repository, profiles ProfileSource, log *logger.Logger) *Service {
	return &Service{repo: repo, profiles: profiles, log: log, now: time.Now}
}

// Feed returns the organization's filtered feed for one tab, soonest deadline
// first. The org profile filters which opportunities surface; decision state
// and the caller's vote are overlaid per item.
func (s *Service) Feed(ctx context.Context, orgID, userID uuid.UUID, tab string, showAll bool) (*FeedPage, error) {
	types, ok := typeGroups[tab]
	if !ok {
		return nil, apperr.Validation("unknown feed tab: " + tab)
	}

	opps, err := s.repo.ListByTypes(ctx, types)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, orgID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC()
	matched := make([]repository.Opportunity, 0, len(opps))
	for i := range opps {
		if MatchesProfile(&opps[i], profile, today) {
			matched = append(matched, opps[i])
		}
	}

	total := len(matched)
	if !showAll && total > defaultFeedLimit {
		matched = matched[:defaultFeedLimit]
	}

	items, err := s.overlay(ctx, orgID, userID, matched, false)
	if err != nil {
		return nil, err
	}

	return &FeedPage{Items: items, Total: total, HasMore: total > len(items)}, nil
}

// Detail returns one opportunity with overlays, including the workspace.
func (s *Service) Detail(ctx context.Context, orgID, userID uuid.UUID, oppID int64) (*Item, error) {
	opp, err := s.repo.GetByID(ctx, oppID)
	if err != nil {
		return nil, err
	}

	items, err := s.overlay(ctx, orgID, userID, []repository.Opportunity{*opp}, true)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Saved returns the organization's opportunities in the given decision
// states, optionally restricted to one tab's type group. An empty states
// slice means SAVED and BID.
func (s *Service) Saved(ctx context.Context, orgID, userID uuid.UUID, states []string, tab string) ([]Item, error) {
	if len(states) == 0 {
		states = []string{string(statemachine.StateSaved), string(statemachine.StateBid)}
	}
	for _, raw := range states {
		if _, err := statemachine.Parse(raw); err != nil {
			return nil, err
		}
	}

	opps, err := s.repo.ListByStates(ctx, orgID, states)
	if err != nil {
		return nil, err
	}

	if tab != "" {
		types, ok := typeGroups[tab]
		if !ok {
			return nil, apperr.Validation("unknown feed tab: " + tab)
		}
		opps = filterByType(opps, types)
	}

	return s.overlay(ctx, orgID, userID, opps, true)
}

// Calendar groups the organization's saved and bid solicitations by month and
// week of their display date. A workspace internal deadline overrides the
// response deadline as the display date.
func (s *Service) Calendar(ctx context.Context, orgID, userID uuid.UUID) ([]CalendarMonth, error) {
	items, err := s.Saved(ctx, orgID, userID, nil, TabSolicitations)
	if err != nil {
		return nil, err
	}

	displayDate := func(it *Item) time.Time {
		if it.Workspace != nil && it.Workspace.InternalDeadline != nil {
			return *it.Workspace.InternalDeadline
		}
		return it.ResponseDeadline
	}

	sort.SliceStable(items, func(i, j int) bool {
		return displayDate(&items[i]).Before(displayDate(&items[j]))
	})

	var months []CalendarMonth
	for _, item := range items {
		date := displayDate(&item)
		monthKey := date.Format("January 2006")
		week := (date.Day()-1)/7 + 1

		if len(months) == 0 || months[len(months)-1].Month != monthKey {
			months = append(months, CalendarMonth{Month: monthKey})
		}
		m := &months[len(months)-1]
		if len(m.Weeks) == 0 || m.Weeks[len(m.Weeks)-1].Week != week {
			m.Weeks = append(m.Weeks, CalendarWeek{Week: week})
		}
		w := &m.Weeks[len(m.Weeks)-1]
		w.Items = append(w.Items, item)
	}

	return months, nil
}

// UpdateWorkspace replaces the org's annotations for one opportunity.
func (s *Service) UpdateWorkspace(ctx context.Context, orgID uuid.UUID, oppID int64, internalDeadline *time.Time, notes *string) (*repository.Workspace, error) {
	if _, err := s.repo.GetByID(ctx, oppID); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertWorkspace(ctx, orgID, oppID, internalDeadline, notes); err != nil {
		return nil, err
	}
	return s.repo.GetWorkspace(ctx, orgID, oppID)
}

// overlay decorates opportunities with decision state, the caller's vote, and
// days until deadline. Absent state rows read as FEED.
func (s *Service) overlay(ctx context.Context, orgID, userID uuid.UUID, opps []repository.Opportunity, withWorkspace bool) ([]Item, error) {
	ids := make([]int64, len(opps))
	for i := range opps {
		ids[i] = opps[i].ID
	}

	states, err := s.repo.StatesFor(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}
	votes, err := s.repo.VotesFor(ctx, orgID, userID, ids)
	if err != nil {
		return nil, err
	}

	var workspaces map[int64]repository.Workspace
	if withWorkspace {
		workspaces, err = s.repo.WorkspacesFor(ctx, orgID, ids)
		if err != nil {
			return nil, err
		}
	}

	today := s.now().UTC()
	items := make([]Item, 0, len(opps))
	for _, opp := range opps {
		item := Item{
			Opportunity:  opp,
			State:        string(statemachine.StateFeed),
			DaysUntilDue: daysUntil(opp.ResponseDeadline, today),
		}
		if state, ok := states[opp.ID]; ok {
			item.State = state
		}
		if vote, ok := votes[opp.ID]; ok {
			v := vote
			item.CallerVote = &v
		}
		if ws, ok := workspaces[opp.ID]; ok {
			wsCopy := ws
			item.Workspace = &wsCopy
		}
		items = append(items, item)
	}
	return items, nil
}

func filterByType(opps []repository.Opportunity, types []string) []repository.Opportunity {
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	out := opps[:0]
	for _, opp := range opps {
		if _, ok := allowed[opp.Type]; ok {
			out = append(out, opp)
		}
	}
	return out
}
