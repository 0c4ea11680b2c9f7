package approval

import "context"

type Repository interface {
	CreateStep(ctx context.Context, s *WorkflowStep) error
	SaveStep(ctx context.Context, s *WorkflowStep) error
	GetStepByStepID(ctx context.Context, stepID string) (*WorkflowStep, error)
	// GetStepByStepIDForUpdate locks the step row for the transaction.
	GetStepByStepIDForUpdate(ctx context.Context, stepID string) (*WorkflowStep, error)
	ListStepsByRequest(ctx context.Context, loanRequestRowID uint64) ([]WorkflowStep, error)

	CreateRollup(ctx context.Context, r *StatusRollup) error
	SaveRollup(ctx context.Context, r *StatusRollup) error
	GetRollupByRequest(ctx context.Context, loanRequestRowID uint64) (*StatusRollup, error)

	ListActiveGlobalApprovers(ctx context.Context) ([]GlobalApprover, error)
	ListActiveResourceApprovers(ctx context.Context, resourceType StepType, resourceID uint64) ([]ResourceApprover, error)

	CreateGlobalApprover(ctx context.Context, a *GlobalApprover) error
	// FindGlobalApprover matches on (user, level) across active and inactive
	// rows; errs.ErrNotFound means the tuple is free.
	FindGlobalApprover(ctx context.Context, userID string, level int) (*GlobalApprover, error)
	CreateResourceApprover(ctx context.Context, a *ResourceApprover) error
	FindResourceApprover(ctx context.Context, resourceType StepType, resourceID uint64, userID string, level int) (*ResourceApprover, error)
}
