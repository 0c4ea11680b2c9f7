package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	approvalDomain "sarpras-backend/internal/domain/approval"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) CreateStep(ctx context.Context, s *approvalDomain.WorkflowStep) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ApprovalRepository) SaveStep(ctx context.Context, s *approvalDomain.WorkflowStep) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ApprovalRepository) GetStepByStepID(ctx context.Context, stepID string) (*approvalDomain.WorkflowStep, error) {
	var out approvalDomain.WorkflowStep
	res := r.db.WithContext(ctx).Where("step_id = ?", stepID).First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *ApprovalRepository) GetStepByStepIDForUpdate(ctx context.Context, stepID string) (*approvalDomain.WorkflowStep, error) {
	var out approvalDomain.WorkflowStep
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("step_id = ?", stepID).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *ApprovalRepository) ListStepsByRequest(ctx context.Context, loanRequestRowID uint64) ([]approvalDomain.WorkflowStep, error) {
	var out []approvalDomain.WorkflowStep
	err := r.db.WithContext(ctx).
		Where("loan_request_id = ?", loanRequestRowID).
		Order("type ASC, approval_level ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApprovalRepository) CreateRollup(ctx context.Context, s *approvalDomain.StatusRollup) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ApprovalRepository) SaveRollup(ctx context.Context, s *approvalDomain.StatusRollup) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ApprovalRepository) GetRollupByRequest(ctx context.Context, loanRequestRowID uint64) (*approvalDomain.StatusRollup, error) {
	var out approvalDomain.StatusRollup
	res := r.db.WithContext(ctx).Where("loan_request_id = ?", loanRequestRowID).First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *ApprovalRepository) ListActiveGlobalApprovers(ctx context.Context) ([]approvalDomain.GlobalApprover, error) {
	var out []approvalDomain.GlobalApprover
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("approval_level ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApprovalRepository) ListActiveResourceApprovers(ctx context.Context, resourceType approvalDomain.StepType, resourceID uint64) ([]approvalDomain.ResourceApprover, error) {
	var out []approvalDomain.ResourceApprover
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ? AND is_active = ?", resourceType, resourceID, true).
		Order("approval_level ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApprovalRepository) CreateGlobalApprover(ctx context.Context, a *approvalDomain.GlobalApprover) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// FindGlobalApprover matches active and inactive rows alike; the uniqueness
// rule spans both.
func (r *ApprovalRepository) FindGlobalApprover(ctx context.Context, userID string, level int) (*approvalDomain.GlobalApprover, error) {
	var out approvalDomain.GlobalApprover
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND approval_level = ?", userID, level).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *ApprovalRepository) CreateResourceApprover(ctx context.Context, a *approvalDomain.ResourceApprover) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApprovalRepository) FindResourceApprover(ctx context.Context, resourceType approvalDomain.StepType, resourceID uint64, userID string, level int) (*approvalDomain.ResourceApprover, error) {
	var out approvalDomain.ResourceApprover
	res := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ? AND user_id = ? AND approval_level = ?",
			resourceType, resourceID, userID, level).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}
