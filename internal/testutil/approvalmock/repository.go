package approvalmock

import (
	"context"

	domain "sarpras-backend/internal/domain/approval"
	"sarpras-backend/internal/domain/errs"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateStepFn               func(ctx context.Context, s *domain.WorkflowStep) error
	SaveStepFn                 func(ctx context.Context, s *domain.WorkflowStep) error
	GetStepByStepIDFn          func(ctx context.Context, stepID string) (*domain.WorkflowStep, error)
	GetStepByStepIDForUpdateFn func(ctx context.Context, stepID string) (*domain.WorkflowStep, error)
	ListStepsByRequestFn       func(ctx context.Context, loanRequestRowID uint64) ([]domain.WorkflowStep, error)

	CreateRollupFn      func(ctx context.Context, r *domain.StatusRollup) error
	SaveRollupFn        func(ctx context.Context, r *domain.StatusRollup) error
	GetRollupByRequestFn func(ctx context.Context, loanRequestRowID uint64) (*domain.StatusRollup, error)

	ListActiveGlobalApproversFn   func(ctx context.Context) ([]domain.GlobalApprover, error)
	ListActiveResourceApproversFn func(ctx context.Context, resourceType domain.StepType, resourceID uint64) ([]domain.ResourceApprover, error)

	CreateGlobalApproverFn   func(ctx context.Context, a *domain.GlobalApprover) error
	FindGlobalApproverFn     func(ctx context.Context, userID string, level int) (*domain.GlobalApprover, error)
	CreateResourceApproverFn func(ctx context.Context, a *domain.ResourceApprover) error
	FindResourceApproverFn   func(ctx context.Context, resourceType domain.StepType, resourceID uint64, userID string, level int) (*domain.ResourceApprover, error)
}

func (m *Repo) CreateStep(ctx context.Context, s *domain.WorkflowStep) error {
	if m.CreateStepFn != nil {
		return m.CreateStepFn(ctx, s)
	}
	return nil
}

func (m *Repo) SaveStep(ctx context.Context, s *domain.WorkflowStep) error {
	if m.SaveStepFn != nil {
		return m.SaveStepFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetStepByStepID(ctx context.Context, stepID string) (*domain.WorkflowStep, error) {
	if m.GetStepByStepIDFn != nil {
		return m.GetStepByStepIDFn(ctx, stepID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) GetStepByStepIDForUpdate(ctx context.Context, stepID string) (*domain.WorkflowStep, error) {
	if m.GetStepByStepIDForUpdateFn != nil {
		return m.GetStepByStepIDForUpdateFn(ctx, stepID)
	}
	return m.GetStepByStepID(ctx, stepID)
}

func (m *Repo) ListStepsByRequest(ctx context.Context, loanRequestRowID uint64) ([]domain.WorkflowStep, error) {
	if m.ListStepsByRequestFn != nil {
		return m.ListStepsByRequestFn(ctx, loanRequestRowID)
	}
	return nil, nil
}

func (m *Repo) CreateRollup(ctx context.Context, r *domain.StatusRollup) error {
	if m.CreateRollupFn != nil {
		return m.CreateRollupFn(ctx, r)
	}
	return nil
}

func (m *Repo) SaveRollup(ctx context.Context, r *domain.StatusRollup) error {
	if m.SaveRollupFn != nil {
		return m.SaveRollupFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetRollupByRequest(ctx context.Context, loanRequestRowID uint64) (*domain.StatusRollup, error) {
	if m.GetRollupByRequestFn != nil {
		return m.GetRollupByRequestFn(ctx, loanRequestRowID)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) ListActiveGlobalApprovers(ctx context.Context) ([]domain.GlobalApprover, error) {
	if m.ListActiveGlobalApproversFn != nil {
		return m.ListActiveGlobalApproversFn(ctx)
	}
	return nil, nil
}

func (m *Repo) ListActiveResourceApprovers(ctx context.Context, resourceType domain.StepType, resourceID uint64) ([]domain.ResourceApprover, error) {
	if m.ListActiveResourceApproversFn != nil {
		return m.ListActiveResourceApproversFn(ctx, resourceType, resourceID)
	}
	return nil, nil
}

func (m *Repo) CreateGlobalApprover(ctx context.Context, a *domain.GlobalApprover) error {
	if m.CreateGlobalApproverFn != nil {
		return m.CreateGlobalApproverFn(ctx, a)
	}
	return nil
}

func (m *Repo) FindGlobalApprover(ctx context.Context, userID string, level int) (*domain.GlobalApprover, error) {
	if m.FindGlobalApproverFn != nil {
		return m.FindGlobalApproverFn(ctx, userID, level)
	}
	return nil, errs.ErrNotFound
}

func (m *Repo) CreateResourceApprover(ctx context.Context, a *domain.ResourceApprover) error {
	if m.CreateResourceApproverFn != nil {
		return m.CreateResourceApproverFn(ctx, a)
	}
	return nil
}

func (m *Repo) FindResourceApprover(ctx context.Context, resourceType domain.StepType, resourceID uint64, userID string, level int) (*domain.ResourceApprover, error) {
	if m.FindResourceApproverFn != nil {
		return m.FindResourceApproverFn(ctx, resourceType, resourceID, userID, level)
	}
	return nil, errs.ErrNotFound
}
