// Package identity carries the signed-in teacher through request contexts and
// delivers sign-in state changes to interested observers.
package identity

import (
	"context"
	"time"
)

type contextKey struct{}

// WithUserID returns a context carrying the signed-in user's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// CurrentUserID returns the signed-in user's id, if any.
func CurrentUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// EventKind is a change in a user's sign-in state.
type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// Event announces a sign-in state change for one user.
type Event struct {
	Kind      EventKind `json:"kind"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier is an explicit observer registration for sign-in state changes.
//
// Subscribe delivers the user's events until ctx ends or the returned cancel
// func is called, whichever comes first; the channel is closed afterwards.
// Cancel is safe to call more than once.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, userID string) (<-chan Event, func())
}
