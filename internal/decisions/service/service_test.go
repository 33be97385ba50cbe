package service

import (
	"context"
	"testing"

	"bidlens_backend/internal/decisions/repository"
	"bidlens_backend/internal/decisions/statemachine"
	"bidlens_backend/internal/eventlog"
	"bidlens_backend/platform/apperr"
	"bidlens_backend/platform/logger"

	"github.com/google/uuid"
)

type stateKey struct {
	org uuid.UUID
	opp int64
}

type voteKey struct {
	org  uuid.UUID
	opp  int64
	user uuid.UUID
}

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	states        map[stateKey]statemachine.State
	votes         map[voteKey]*string
	opportunities map[int64]bool
}

func newFakeRepo(oppIDs ...int64) *fakeRepo {
	opps := make(map[int64]bool)
	for _, id := range oppIDs {
		opps[id] = true
	}
	return &fakeRepo{
		states:        make(map[stateKey]statemachine.State),
		votes:         make(map[voteKey]*string),
		opportunities: opps,
	}
}

func (f *fakeRepo) Transition(_ context.Context, orgID uuid.UUID, oppID int64, _ uuid.UUID,
	decide func(statemachine.State) (statemachine.State, error)) (statemachine.State, statemachine.State, error) {
	key := stateKey{orgID, oppID}
	from := statemachine.StateFeed
	if s, ok := f.states[key]; ok {
		from = s
	}
	to, err := decide(from)
	if err != nil {
		return "", "", err
	}
	f.states[key] = to
	return from, to, nil
}

func (f *fakeRepo) UpsertVote(_ context.Context, orgID uuid.UUID, oppID int64, userID uuid.UUID, vote *string) error {
	f.votes[voteKey{orgID, oppID, userID}] = vote
	return nil
}

func (f *fakeRepo) GetTally(_ context.Context, orgID uuid.UUID, oppID int64) (repository.Tally, error) {
	var t repository.Tally
	for k, v := range f.votes {
		if k.org != orgID || k.opp != oppID || v == nil {
			continue
		}
		switch *v {
		case "UP":
			t.Up++
		case "DOWN":
			t.Down++
		case "PASS":
			t.Pass++
		}
	}
	return t, nil
}

func (f *fakeRepo) OpportunityExists(_ context.Context, oppID int64) (bool, error) {
	return f.opportunities[oppID], nil
}

// fakeRecorder captures appended audit entries.
type fakeRecorder struct {
	entries []eventlog.Entry
}

func (f *fakeRecorder) Append(_ context.Context, entry eventlog.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func newService(repo *fakeRepo, rec *fakeRecorder) *Service {
	return New(repo, rec, nil, logger.New("development"))
}

func TestTransition_LifecycleScenario(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()
	const oppID = int64(42)

	repo := newFakeRepo(oppID)
	rec := &fakeRecorder{}
	svc := newService(repo, rec)

	// No state row yet: direct FEED -> BID must fail.
	if _, err := svc.Transition(ctx, orgID, userID, oppID, "BID", "v1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("FEED -> BID should be a validation error, got %v", err)
	}

	state, err := svc.Transition(ctx, orgID, userID, oppID, "SAVED", "v1")
	if err != nil {
		t.Fatalf("FEED -> SAVED failed: %v", err)
	}
	if state != statemachine.StateSaved {
		t.Fatalf("expected SAVED, got %s", state)
	}

	state, err = svc.Transition(ctx, orgID, userID, oppID, "BID", "v1")
	if err != nil {
		t.Fatalf("SAVED -> BID failed: %v", err)
	}
	if state != statemachine.StateBid {
		t.Fatalf("expected BID, got %s", state)
	}

	// BID is terminal.
	if _, err := svc.Transition(ctx, orgID, userID, oppID, "NO_BID", "v1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("BID -> NO_BID should be a validation error, got %v", err)
	}

	if len(rec.entries) != 2 {
		t.Fatalf("expected 2 state_changed events, got %d", len(rec.entries))
	}
	first := rec.entries[0]
	if first.EventType != eventlog.TypeStateChanged {
		t.Errorf("expected state_changed event, got %s", first.EventType)
	}
	if first.Payload["from"] != "FEED" || first.Payload["to"] != "SAVED" {
		t.Errorf("unexpected first payload: %v", first.Payload)
	}
	second := rec.entries[1]
	if second.Payload["from"] != "SAVED" || second.Payload["to"] != "BID" {
		t.Errorf("unexpected second payload: %v", second.Payload)
	}
}

func TestTransition_UnknownTargetState(t *testing.T) {
	repo := newFakeRepo(1)
	svc := newService(repo, &fakeRecorder{})

	if _, err := svc.Transition(context.Background(), uuid.New(), uuid.New(), 1, "DROPPED", "v1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown state, got %v", err)
	}
}

func TestTransition_UnknownOpportunity(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeRecorder{})

	if _, err := svc.Transition(context.Background(), uuid.New(), uuid.New(), 99, "SAVED", "v1"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransition_FailedValidationDoesNotPersistOrAudit(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	repo := newFakeRepo(7)
	rec := &fakeRecorder{}
	svc := newService(repo, rec)

	if _, err := svc.Transition(ctx, orgID, uuid.New(), 7, "BID", "v1"); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.states) != 0 {
		t.Error("state should not be persisted on failed validation")
	}
	if len(rec.entries) != 0 {
		t.Error("no audit event should be appended on failed validation")
	}
}

// racingStateRepo commits another writer's NO_BID right before decide runs,
// modeling the moment between a caller reading SAVED and acquiring the row
// lock.
type racingStateRepo struct {
	*fakeRepo
	racedKey stateKey
}

func (f *racingStateRepo) Transition(ctx context.Context, orgID uuid.UUID, oppID int64, userID uuid.UUID,
	decide func(statemachine.State) (statemachine.State, error)) (statemachine.State, statemachine.State, error) {
	if key := (stateKey{orgID, oppID}); key == f.racedKey {
		f.states[key] = statemachine.StateNoBid
	}
	return f.fakeRepo.Transition(ctx, orgID, oppID, userID, decide)
}

func TestTransition_ValidatesAgainstFreshlyCommittedState(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()
	const oppID = int64(13)

	base := newFakeRepo(oppID)
	if _, err := newService(base, &fakeRecorder{}).Transition(ctx, orgID, userID, oppID, "SAVED", "v1"); err != nil {
		t.Fatalf("seed SAVED: %v", err)
	}

	// A second writer lands NO_BID while this caller still believes the
	// state is SAVED. The transition must validate against NO_BID and fail
	// rather than overwrite a terminal state.
	repo := &racingStateRepo{fakeRepo: base, racedKey: stateKey{orgID, oppID}}
	rec := &fakeRecorder{}
	svc := New(repo, rec, nil, logger.New("development"))

	if _, err := svc.Transition(ctx, orgID, userID, oppID, "BID", "v1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("stale SAVED -> BID should fail validation against NO_BID, got %v", err)
	}
	if got := base.states[stateKey{orgID, oppID}]; got != statemachine.StateNoBid {
		t.Errorf("state = %s, terminal NO_BID was overwritten", got)
	}
	if len(rec.entries) != 0 {
		t.Error("no audit event should be appended for the losing writer")
	}
}

func TestSetVote_ThenClear(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()
	const oppID = int64(5)

	repo := newFakeRepo(oppID)
	rec := &fakeRecorder{}
	svc := newService(repo, rec)

	up := "UP"
	vote, err := svc.SetVote(ctx, orgID, userID, oppID, &up, "v1")
	if err != nil {
		t.Fatalf("set vote failed: %v", err)
	}
	if vote == nil || *vote != "UP" {
		t.Fatalf("expected UP, got %v", vote)
	}

	vote, err = svc.SetVote(ctx, orgID, userID, oppID, nil, "v1")
	if err != nil {
		t.Fatalf("clear vote failed: %v", err)
	}
	if vote != nil {
		t.Fatalf("expected cleared vote, got %v", *vote)
	}

	// Row kept with nil value, distinguishable from never voted.
	stored, ok := repo.votes[voteKey{orgID, oppID, userID}]
	if !ok {
		t.Fatal("vote row should still exist after clearing")
	}
	if stored != nil {
		t.Fatalf("stored vote should be nil, got %v", *stored)
	}

	tally, err := svc.GetTally(ctx, orgID, oppID)
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Up != 0 {
		t.Errorf("cleared vote should not count, got up=%d", tally.Up)
	}

	if len(rec.entries) != 2 {
		t.Fatalf("expected a vote_cast event per change, got %d", len(rec.entries))
	}
	for _, e := range rec.entries {
		if e.EventType != eventlog.TypeVoteCast {
			t.Errorf("expected vote_cast, got %s", e.EventType)
		}
	}
	if rec.entries[1].Payload["vote"] != nil {
		t.Errorf("clear event payload should carry null vote, got %v", rec.entries[1].Payload["vote"])
	}
}

func TestSetVote_TwoUsersTally(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	const oppID = int64(9)

	repo := newFakeRepo(oppID)
	svc := newService(repo, &fakeRecorder{})

	up, down := "UP", "DOWN"
	if _, err := svc.SetVote(ctx, orgID, uuid.New(), oppID, &up, "v1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetVote(ctx, orgID, uuid.New(), oppID, &down, "v1"); err != nil {
		t.Fatal(err)
	}

	tally, err := svc.GetTally(ctx, orgID, oppID)
	if err != nil {
		t.Fatal(err)
	}
	if tally.Up != 1 || tally.Down != 1 || tally.Pass != 0 {
		t.Fatalf("expected {up:1 down:1 pass:0}, got %+v", tally)
	}
}

func TestNormalizeVote(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"UP", "UP"},
		{"up", "UP"},
		{"PURSUE", "UP"},
		{"SHORTLIST", "UP"},
		{"DOWN", "DOWN"},
		{"PASS", "DOWN"},
		{" pass ", "DOWN"},
	}
	for _, tc := range cases {
		got, err := NormalizeVote(&tc.in)
		if err != nil {
			t.Errorf("NormalizeVote(%q) returned error: %v", tc.in, err)
			continue
		}
		if got == nil || *got != tc.want {
			t.Errorf("NormalizeVote(%q) = %v, want %s", tc.in, got, tc.want)
		}
	}

	if got, err := NormalizeVote(nil); err != nil || got != nil {
		t.Errorf("NormalizeVote(nil) = %v, %v; want nil, nil", got, err)
	}

	bad := "MAYBE"
	if _, err := NormalizeVote(&bad); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for out-of-domain vote, got %v", err)
	}
}
