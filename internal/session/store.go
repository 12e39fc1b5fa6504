// Package session keeps server-side login state keyed by an opaque session id
// and carries that id to the client in a signed cookie.
package session

import (
	"context"

	"session_auth/internal/models"
)

// Store persists sessions by id. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns (nil, nil) when the id is unknown or the session has expired.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Set creates or replaces the session; it lives until s.ExpiresAt.
	Set(ctx context.Context, s models.Session) error
	// Destroy removes the session. Destroying an unknown id is not an error.
	Destroy(ctx context.Context, id string) error
}
