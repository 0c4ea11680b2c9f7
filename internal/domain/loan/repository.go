package loan

import (
	"context"

	"sarpras-backend/internal/domain/schedule"
)

type Repository interface {
	Create(ctx context.Context, l *LoanRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*LoanRequest, error)
	// GetByRequestIDForUpdate locks the row for the rest of the transaction.
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*LoanRequest, error)
	// GetByRowIDForUpdate resolves through the numeric PK; workflow steps
	// only carry that FK.
	GetByRowIDForUpdate(ctx context.Context, rowID uint64) (*LoanRequest, error)
	Save(ctx context.Context, l *LoanRequest) error

	// FindOverlapping returns the first still-active request occupying the
	// same resource in a window strictly overlapping w, skipping excludeRowID
	// so an update does not collide with itself. Returns errs.ErrNotFound
	// when the slot is free.
	FindOverlapping(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, excludeRowID uint64) (*LoanRequest, error)

	SaveItem(ctx context.Context, item *LoanItem) error

	// Unit allocation ledger.
	CreateUnit(ctx context.Context, u *LoanItemUnit) error
	SaveUnit(ctx context.Context, u *LoanItemUnit) error
	// FindActiveUnitByAsset reports whether assetUnitID is already allocated
	// to some loan item; errs.ErrNotFound means it is free.
	FindActiveUnitByAsset(ctx context.Context, assetUnitID uint64) (*LoanItemUnit, error)
	ListActiveUnitsByRequest(ctx context.Context, loanRequestRowID uint64) ([]LoanItemUnit, error)
}
