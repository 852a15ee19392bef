package cart

import "context"

// Store keeps a caller's cart across requests. Implementations must be
// swappable: Redis in multi-instance deployments, in-memory for
// single-instance runs and tests.
type Store interface {
	Load(ctx context.Context, owner string) (*Cart, error)
	Save(ctx context.Context, owner string, c *Cart) error
	Clear(ctx context.Context, owner string) error
}
