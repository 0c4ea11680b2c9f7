package marking

import (
	"context"
	"time"

	"sarpras-backend/internal/domain/schedule"
)

type Repository interface {
	Create(ctx context.Context, m *Marking) error
	GetByMarkingID(ctx context.Context, markingID string) (*Marking, error)
	GetByMarkingIDForUpdate(ctx context.Context, markingID string) (*Marking, error)
	Save(ctx context.Context, m *Marking) error

	// FindOverlapping returns the first marking still holding the same
	// resource slot: stored status active AND expires_at in the future.
	// errs.ErrNotFound means the slot is free.
	FindOverlapping(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, now time.Time, excludeRowID uint64) (*Marking, error)

	// ListExpiredActive feeds the reconciliation sweep: rows stored as
	// active whose expires_at is already behind now.
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]Marking, error)
}
