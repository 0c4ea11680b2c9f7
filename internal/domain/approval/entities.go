package approval

import (
	"time"
)

type StepType string

const (
	StepGlobal    StepType = "global"
	StepSarana    StepType = "sarana"
	StepPrasarana StepType = "prasarana"
)

type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
)

// WorkflowStep is one approval decision slot on a loan request: exactly one
// global step set per active global approver, plus one step per resource
// that has its own approvers. Steps are seeded at request creation and only
// mutated through Approve/Reject/Reset/Override.
type WorkflowStep struct {
	ID               uint64   `gorm:"primaryKey;column:id" json:"-"`
	StepID           string   `gorm:"size:32;uniqueIndex:ux_workflow_steps_step_id" json:"step_id"`
	LoanRequestRowID uint64   `gorm:"column:loan_request_id;index" json:"-"`
	Type             StepType `gorm:"type:enum('global','sarana','prasarana')" json:"type"`
	// ResourceID points at the sarana/prasarana this step covers; nil for
	// global steps.
	ResourceID    *uint64    `gorm:"column:resource_id" json:"resource_id,omitempty"`
	ApproverID    string     `gorm:"size:32;column:approver_id" json:"approver_id"`
	ApprovalLevel int        `gorm:"column:approval_level" json:"approval_level"`
	Status        StepStatus `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"status"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`

	// ApprovedAt and RejectedAt are mutually exclusive; setting one clears
	// the other so the step always shows a single decision timestamp.
	ApprovedAt *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectedAt *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`

	// Override is an orthogonal marker layered on top of Status so a
	// higher-authority decision never destroys the original audit trail.
	OverriddenBy *string    `gorm:"size:32;column:overridden_by" json:"overridden_by,omitempty"`
	OverriddenAt *time.Time `gorm:"column:overridden_at" json:"overridden_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkflowStep) TableName() string { return "loan_approval_workflows" }

// Approve is idempotent: re-approving refreshes notes and timestamp only.
func (s *WorkflowStep) Approve(notes string, now time.Time) {
	s.Status = StepApproved
	s.Notes = notes
	t := now
	s.ApprovedAt = &t
	s.RejectedAt = nil
}

func (s *WorkflowStep) Reject(notes string, now time.Time) {
	s.Status = StepRejected
	s.Notes = notes
	t := now
	s.RejectedAt = &t
	s.ApprovedAt = nil
}

// Reset returns the step to pending and clears both decision timestamps.
func (s *WorkflowStep) Reset() {
	s.Status = StepPending
	s.ApprovedAt = nil
	s.RejectedAt = nil
}

func (s *WorkflowStep) Override(by string, now time.Time) {
	b := by
	t := now
	s.OverriddenBy = &b
	s.OverriddenAt = &t
}

func (s *WorkflowStep) IsOverridden() bool { return s.OverriddenAt != nil }

type OverallStatus string

const (
	OverallPending           OverallStatus = "pending"
	OverallPartiallyApproved OverallStatus = "partially_approved"
	OverallApproved          OverallStatus = "approved"
	OverallRejected          OverallStatus = "rejected"
)

type GlobalStatus string

const (
	GlobalPending  GlobalStatus = "pending"
	GlobalApproved GlobalStatus = "approved"
	GlobalRejected GlobalStatus = "rejected"
)

// StatusRollup is the 1:1 derived summary of all workflow steps on one loan
// request. It is recomputed inside the same transaction as every step
// mutation so readers never observe a stale overall status.
type StatusRollup struct {
	ID               uint64        `gorm:"primaryKey;column:id" json:"-"`
	LoanRequestRowID uint64        `gorm:"column:loan_request_id;uniqueIndex:ux_approval_rollups_loan" json:"-"`
	OverallStatus    OverallStatus `gorm:"type:enum('pending','partially_approved','approved','rejected');default:'pending'" json:"overall_status"`
	GlobalStatus     GlobalStatus  `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"global_approval_status"`
	GlobalDecidedBy  *string       `gorm:"size:32;column:global_decided_by" json:"global_decided_by,omitempty"`
	GlobalDecidedAt  *time.Time    `gorm:"column:global_decided_at" json:"global_decided_at,omitempty"`
	GlobalReason     *string       `gorm:"type:text;column:global_reason" json:"global_reason,omitempty"`

	SpecificTotal    int `gorm:"column:specific_total" json:"specific_total"`
	SpecificApproved int `gorm:"column:specific_approved" json:"specific_approved"`
	SpecificRejected int `gorm:"column:specific_rejected" json:"specific_rejected"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StatusRollup) TableName() string { return "loan_approval_statuses" }

// GlobalApprover maps a user to a campus-wide approval level.
type GlobalApprover struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID        string    `gorm:"size:32;column:user_id;index" json:"user_id"`
	ApprovalLevel int       `gorm:"column:approval_level" json:"approval_level"`
	IsActive      bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GlobalApprover) TableName() string { return "global_approvers" }

// ResourceApprover maps a user to an approval level on one specific sarana
// or prasarana. The (resource, user, level) tuple must stay unique across
// active and inactive rows; the service layer checks before insert.
type ResourceApprover struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	ResourceType  StepType  `gorm:"type:enum('sarana','prasarana');column:resource_type" json:"resource_type"`
	ResourceID    uint64    `gorm:"column:resource_id;index" json:"resource_id"`
	UserID        string    `gorm:"size:32;column:user_id;index" json:"user_id"`
	ApprovalLevel int       `gorm:"column:approval_level" json:"approval_level"`
	IsActive      bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ResourceApprover) TableName() string { return "resource_approvers" }
