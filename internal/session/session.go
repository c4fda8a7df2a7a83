// Package session owns a player's game: it loads or creates the stored
// state, applies choices and partial updates, and publishes every change to
// subscribers once it has been persisted.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/tatianab/backrooms/internal/store"
)

var (
	ErrUnauthenticated = errors.New("must authenticate")
	ErrNotReady        = errors.New("game is not ready")
	ErrBusy            = errors.New("another action is still in progress")
	ErrUnknownChoice   = errors.New("choice is not offered by the current event")
)

// User is the authenticated player.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Auth resolves the current player. Implementations return an error
// wrapping ErrUnauthenticated when nobody is signed in.
type Auth interface {
	CurrentUser(ctx context.Context) (User, error)
}

// Store is the document store holding game states.
type Store interface {
	Create(ctx context.Context, doc store.Document) error
	Update(ctx context.Context, id string, doc store.Document) error
	List(ctx context.Context, q store.Query) ([]store.Document, error)
}

// Status is the controller's lifecycle state.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusErrored:
		return "errored"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
