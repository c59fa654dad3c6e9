package ports

import "context"

// SessionStore maps a shop domain to its access token. It is the single
// source of truth for "is this shop authenticated" and must be safe under
// concurrent access from in-flight requests.
type SessionStore interface {
	// Get returns the access token for a shop, or domain.ErrSessionNotFound.
	Get(ctx context.Context, shop string) (string, error)
	Put(ctx context.Context, shop string, accessToken string) error
	Has(ctx context.Context, shop string) (bool, error)
}
