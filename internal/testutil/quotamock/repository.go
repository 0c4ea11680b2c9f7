package quotamock

import (
	"context"

	"sarpras-backend/internal/domain/errs"
	domain "sarpras-backend/internal/domain/quota"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetOrCreateFn  func(ctx context.Context, userID string, defaultMax int) (*domain.UserQuota, error)
	GetForUpdateFn func(ctx context.Context, userID string) (*domain.UserQuota, error)
	IncrementFn    func(ctx context.Context, userID string) error
	DecrementFn    func(ctx context.Context, userID string) error
}

func (m *Repo) GetOrCreate(ctx context.Context, userID string, defaultMax int) (*domain.UserQuota, error) {
	if m.GetOrCreateFn != nil {
		return m.GetOrCreateFn(ctx, userID, defaultMax)
	}
	return &domain.UserQuota{UserID: userID, MaxBorrowings: defaultMax}, nil
}

func (m *Repo) GetForUpdate(ctx context.Context, userID string) (*domain.UserQuota, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, userID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) Increment(ctx context.Context, userID string) error {
	if m.IncrementFn != nil {
		return m.IncrementFn(ctx, userID)
	}
	return nil
}

func (m *Repo) Decrement(ctx context.Context, userID string) error {
	if m.DecrementFn != nil {
		return m.DecrementFn(ctx, userID)
	}
	return nil
}
