package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sarpras-backend/internal/domain/errs"
	loanDomain "sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/schedule"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// orNotFound maps gorm's record-not-found onto the domain sentinel so
// usecases never import gorm.
func orNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	return err
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.LoanRequest) error {
	// Items cascade through the association.
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Omit("Items").Save(l).Error
}

func (r *LoanRepository) GetByRequestID(ctx context.Context, requestID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Units").
		Where("request_id = ?", requestID).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *LoanRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	// Preload after locking; FOR UPDATE and Preload do not mix in one query.
	if err := r.db.WithContext(ctx).Preload("Units").Where("loan_request_id = ?", out.ID).Find(&out.Items).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) GetByRowIDForUpdate(ctx context.Context, rowID uint64) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", rowID).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

// FindOverlapping relies on the surrounding serializable transaction rather
// than row locks: the rows that matter may not exist yet.
func (r *LoanRepository) FindOverlapping(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, excludeRowID uint64) (*loanDomain.LoanRequest, error) {
	if ref.Kind == schedule.KindNone {
		return nil, errs.ErrNotFound
	}
	q := r.db.WithContext(ctx).
		Where("status IN ?", loanDomain.ActiveStatuses()).
		Where("starts_at < ? AND ends_at > ?", w.EndsAt, w.StartsAt)
	switch ref.Kind {
	case schedule.KindRoom:
		q = q.Where("room_id = ?", ref.RoomID)
	case schedule.KindCustomLocation:
		q = q.Where("custom_location = ?", ref.CustomLocation)
	}
	if excludeRowID > 0 {
		q = q.Where("id <> ?", excludeRowID)
	}
	var out loanDomain.LoanRequest
	res := q.Order("starts_at ASC, id ASC").First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *LoanRepository) SaveItem(ctx context.Context, item *loanDomain.LoanItem) error {
	return r.db.WithContext(ctx).Omit("Units").Save(item).Error
}

func (r *LoanRepository) CreateUnit(ctx context.Context, u *loanDomain.LoanItemUnit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *LoanRepository) SaveUnit(ctx context.Context, u *loanDomain.LoanItemUnit) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *LoanRepository) FindActiveUnitByAsset(ctx context.Context, assetUnitID uint64) (*loanDomain.LoanItemUnit, error) {
	var out loanDomain.LoanItemUnit
	res := r.db.WithContext(ctx).
		Where("asset_unit_id = ? AND status = ?", assetUnitID, loanDomain.UnitActive).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *LoanRepository) ListActiveUnitsByRequest(ctx context.Context, loanRequestRowID uint64) ([]loanDomain.LoanItemUnit, error) {
	var out []loanDomain.LoanItemUnit
	err := r.db.WithContext(ctx).
		Joins("JOIN loan_items ON loan_items.id = loan_item_units.loan_item_id").
		Where("loan_items.loan_request_id = ? AND loan_item_units.status = ?", loanRequestRowID, loanDomain.UnitActive).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
