package quota

import "context"

type Repository interface {
	// GetOrCreate lazily materializes the quota row with defaultMax.
	GetOrCreate(ctx context.Context, userID string, defaultMax int) (*UserQuota, error)
	// GetForUpdate locks the quota row for the transaction.
	GetForUpdate(ctx context.Context, userID string) (*UserQuota, error)
	// Increment and Decrement are single atomic SQL updates, never
	// read-modify-write. Decrement floors at zero.
	Increment(ctx context.Context, userID string) error
	Decrement(ctx context.Context, userID string) error
}
