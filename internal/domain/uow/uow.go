package uow

import (
	"context"

	"sarpras-backend/internal/domain/approval"
	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/marking"
	"sarpras-backend/internal/domain/quota"
)

type Repos struct {
	Loans     loan.Repository
	Approvals approval.Repository
	Quotas    quota.Repository
	Markings  marking.Repository
}

type UnitOfWork interface {
	// WithinTx runs fn with all repositories bound to one transaction.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinSerializableTx is WithinTx at serializable isolation; used for
	// the conflict-check-then-insert flows so two concurrent requests
	// cannot both pass the availability check.
	WithinSerializableTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row up-front, then runs fn.
	WithinLoanTx(ctx context.Context, requestID string, fn func(r Repos, l *loan.LoanRequest) error) error
}
