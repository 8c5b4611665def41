package navigation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/p-n-ai/pai-records/internal/schedule"
)

// Action is a week-view navigation command.
type Action string

const (
	Current Action = ""
	Next    Action = "next"
	Prev    Action = "prev"
	Today   Action = "today"
)

// ParseAction accepts next, prev, today or an empty string (stay on the current week).
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case Current, Next, Prev, Today:
		return a, nil
	default:
		return "", fmt.Errorf("unknown navigation action %q", s)
	}
}

// Navigator applies navigation actions to a viewer's stored reference date.
type Navigator struct {
	store    Store
	resolver *schedule.Resolver
}

// NewNavigator creates a navigator. Viewers without a stored date start on the
// resolver's current week.
func NewNavigator(store Store, resolver *schedule.Resolver) *Navigator {
	return &Navigator{store: store, resolver: resolver}
}

// Resolver returns the resolver used for "today" and week arithmetic.
func (n *Navigator) Resolver() *schedule.Resolver {
	return n.resolver
}

// Apply moves the viewer's week according to action, persists the new
// reference and returns the resulting week.
func (n *Navigator) Apply(ctx context.Context, viewer string, action Action) (schedule.Week, error) {
	ref, err := n.reference(ctx, viewer)
	if err != nil {
		return schedule.Week{}, err
	}

	week := schedule.Week{Reference: ref}
	switch action {
	case Next:
		week = week.Navigate(1)
	case Prev:
		week = week.Navigate(-1)
	case Today:
		week = week.Today(n.resolver.Now())
	case Current:
		return week, nil
	default:
		return schedule.Week{}, fmt.Errorf("unknown navigation action %q", action)
	}

	if err := n.store.SetReference(ctx, viewer, week.Reference); err != nil {
		return schedule.Week{}, err
	}
	return week, nil
}

// reference returns the viewer's stored date in the resolver's location, or now.
func (n *Navigator) reference(ctx context.Context, viewer string) (time.Time, error) {
	now := n.resolver.Now()
	ref, ok, err := n.store.Reference(ctx, viewer)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return now, nil
	}
	return ref.In(now.Location()), nil
}
