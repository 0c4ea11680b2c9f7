package mysql

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:     &LoanRepository{db: tx},
		Approvals: &ApprovalRepository{db: tx},
		Quotas:    &QuotaRepository{db: tx},
		Markings:  &MarkingRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// WithinSerializableTx backs the check-then-insert reservation flows: at
// serializable isolation two concurrent requests cannot both pass the
// availability check and both insert.
func (u *GormUoW) WithinSerializableTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, requestID string, fn func(r uow.Repos, l *loan.LoanRequest) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
