// Package statemachine defines the decision states for an opportunity within
// an organization and the legal transitions between them.
package statemachine

import (
	"fmt"

	"bidlens_backend/platform/apperr"
)

// State is the organization-level decision state of an opportunity.
type State string

const (
	// StateFeed is the implicit default: the opportunity sits in the shared
	// feed with no decision recorded. Absence of a state row means FEED.
	StateFeed State = "FEED"
	// StateSaved marks an opportunity the organization is considering.
	StateSaved State = "SAVED"
	// StateBid records a bid decision. Terminal.
	StateBid State = "BID"
	// StateNoBid records a no-bid decision. Terminal.
	StateNoBid State = "NO_BID"
)

// allowedTransitions is the complete transition table. States absent from a
// target set are unreachable from that source.
var allowedTransitions = map[State][]State{
	StateFeed:  {StateSaved, StateNoBid},
	StateSaved: {StateBid, StateNoBid},
	StateBid:   {},
	StateNoBid: {},
}

// Parse converts a raw string into a State, rejecting unknown values.
func Parse(s string) (State, error) {
	switch State(s) {
	case StateFeed, StateSaved, StateBid, StateNoBid:
		return State(s), nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown state: %q", s))
}

// IsTerminal reports whether no transition out of the state is allowed.
func IsTerminal(s State) bool {
	return len(allowedTransitions[s]) == 0
}

// ValidateTransition checks the transition table. It returns nil when the
// target is reachable from the current state, and a validation error naming
// both states otherwise. It never mutates anything; the only way a state
// changes is through an explicit request validated here.
func ValidateTransition(from, to State) error {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return apperr.Validation(fmt.Sprintf("invalid transition: %s -> %s", from, to))
}
