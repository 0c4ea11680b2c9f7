package loanmock

import (
	"context"

	domain "sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/errs"
	"sarpras-backend/internal/domain/schedule"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset methods fall back to harmless defaults (empty result / not found).
type Repo struct {
	CreateFn                  func(ctx context.Context, l *domain.LoanRequest) error
	GetByRequestIDFn          func(ctx context.Context, requestID string) (*domain.LoanRequest, error)
	GetByRequestIDForUpdateFn func(ctx context.Context, requestID string) (*domain.LoanRequest, error)
	GetByRowIDForUpdateFn     func(ctx context.Context, rowID uint64) (*domain.LoanRequest, error)
	SaveFn                    func(ctx context.Context, l *domain.LoanRequest) error
	FindOverlappingFn         func(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, excludeRowID uint64) (*domain.LoanRequest, error)
	SaveItemFn                func(ctx context.Context, item *domain.LoanItem) error
	CreateUnitFn              func(ctx context.Context, u *domain.LoanItemUnit) error
	SaveUnitFn                func(ctx context.Context, u *domain.LoanItemUnit) error
	FindActiveUnitByAssetFn   func(ctx context.Context, assetUnitID uint64) (*domain.LoanItemUnit, error)
	ListActiveUnitsByRequestFn func(ctx context.Context, loanRequestRowID uint64) ([]domain.LoanItemUnit, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.LoanRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.LoanRequest, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*domain.LoanRequest, error) {
	if m.GetByRequestIDForUpdateFn != nil {
		return m.GetByRequestIDForUpdateFn(ctx, requestID)
	}
	return m.GetByRequestID(ctx, requestID)
}

func (m *Repo) GetByRowIDForUpdate(ctx context.Context, rowID uint64) (*domain.LoanRequest, error) {
	if m.GetByRowIDForUpdateFn != nil {
		return m.GetByRowIDForUpdateFn(ctx, rowID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, l *domain.LoanRequest) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) FindOverlapping(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, excludeRowID uint64) (*domain.LoanRequest, error) {
	if m.FindOverlappingFn != nil {
		return m.FindOverlappingFn(ctx, ref, w, excludeRowID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) SaveItem(ctx context.Context, item *domain.LoanItem) error {
	if m.SaveItemFn != nil {
		return m.SaveItemFn(ctx, item)
	}
	return nil
}

func (m *Repo) CreateUnit(ctx context.Context, u *domain.LoanItemUnit) error {
	if m.CreateUnitFn != nil {
		return m.CreateUnitFn(ctx, u)
	}
	return nil
}

func (m *Repo) SaveUnit(ctx context.Context, u *domain.LoanItemUnit) error {
	if m.SaveUnitFn != nil {
		return m.SaveUnitFn(ctx, u)
	}
	return nil
}

func (m *Repo) FindActiveUnitByAsset(ctx context.Context, assetUnitID uint64) (*domain.LoanItemUnit, error) {
	if m.FindActiveUnitByAssetFn != nil {
		return m.FindActiveUnitByAssetFn(ctx, assetUnitID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) ListActiveUnitsByRequest(ctx context.Context, loanRequestRowID uint64) ([]domain.LoanItemUnit, error) {
	if m.ListActiveUnitsByRequestFn != nil {
		return m.ListActiveUnitsByRequestFn(ctx, loanRequestRowID)
	}
	return nil, nil
}
