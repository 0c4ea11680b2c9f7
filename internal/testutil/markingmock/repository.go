package markingmock

import (
	"context"
	"time"

	"sarpras-backend/internal/domain/errs"
	domain "sarpras-backend/internal/domain/marking"
	"sarpras-backend/internal/domain/schedule"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                  func(ctx context.Context, m *domain.Marking) error
	GetByMarkingIDFn          func(ctx context.Context, markingID string) (*domain.Marking, error)
	GetByMarkingIDForUpdateFn func(ctx context.Context, markingID string) (*domain.Marking, error)
	SaveFn                    func(ctx context.Context, m *domain.Marking) error
	FindOverlappingFn         func(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, now time.Time, excludeRowID uint64) (*domain.Marking, error)
	ListExpiredActiveFn       func(ctx context.Context, now time.Time, limit int) ([]domain.Marking, error)
}

func (m *Repo) Create(ctx context.Context, mk *domain.Marking) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, mk)
	}
	return nil
}

func (m *Repo) GetByMarkingID(ctx context.Context, markingID string) (*domain.Marking, error) {
	if m.GetByMarkingIDFn != nil {
		return m.GetByMarkingIDFn(ctx, markingID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) GetByMarkingIDForUpdate(ctx context.Context, markingID string) (*domain.Marking, error) {
	if m.GetByMarkingIDForUpdateFn != nil {
		return m.GetByMarkingIDForUpdateFn(ctx, markingID)
	}
	return m.GetByMarkingID(ctx, markingID)
}

func (m *Repo) Save(ctx context.Context, mk *domain.Marking) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, mk)
	}
	return nil
}

func (m *Repo) FindOverlapping(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, now time.Time, excludeRowID uint64) (*domain.Marking, error) {
	if m.FindOverlappingFn != nil {
		return m.FindOverlappingFn(ctx, ref, w, now, excludeRowID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Marking, error) {
	if m.ListExpiredActiveFn != nil {
		return m.ListExpiredActiveFn(ctx, now, limit)
	}
	return nil, nil
}
