package uowmock

import (
	"context"

	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/uow"
)

// UoW runs callbacks directly against the configured repos, no transaction.
// Tests that care about commit/rollback behavior set FailTx.
type UoW struct {
	Repos  uow.Repos
	FailTx error // returned before fn runs when set
}

func New(r uow.Repos) *UoW { return &UoW{Repos: r} }

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if u.FailTx != nil {
		return u.FailTx
	}
	return fn(u.Repos)
}

func (u *UoW) WithinSerializableTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.WithinTx(ctx, fn)
}

func (u *UoW) WithinLoanTx(ctx context.Context, requestID string, fn func(r uow.Repos, l *loan.LoanRequest) error) error {
	if u.FailTx != nil {
		return u.FailTx
	}
	l, err := u.Repos.Loans.GetByRequestIDForUpdate(ctx, requestID)
	if err != nil {
		return err
	}
	return fn(u.Repos, l)
}
