package approval

import "time"

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type DecideGlobalInput struct {
	RequestID  string   `json:"-"`
	ApproverID string   `json:"approver_id"`
	Decision   Decision `json:"decision"`
	Reason     string   `json:"reason,omitempty"`
}

type DecideSpecificInput struct {
	StepID     string   `json:"-"`
	ApproverID string   `json:"approver_id"`
	Decision   Decision `json:"decision"`
	Reason     string   `json:"reason,omitempty"`
}

type OverrideInput struct {
	StepID   string   `json:"-"`
	ActorID  string   `json:"actor_id"`
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason,omitempty"`
}

type RegisterGlobalApproverInput struct {
	UserID        string `json:"user_id"`
	ApprovalLevel int    `json:"approval_level"`
}

type RegisterResourceApproverInput struct {
	ResourceType  string `json:"resource_type"`
	ResourceID    uint64 `json:"resource_id"`
	UserID        string `json:"user_id"`
	ApprovalLevel int    `json:"approval_level"`
}

type StepDTO struct {
	StepID        string     `json:"step_id"`
	Type          string     `json:"type"`
	ResourceID    *uint64    `json:"resource_id,omitempty"`
	ApproverID    string     `json:"approver_id"`
	ApprovalLevel int        `json:"approval_level"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	OverriddenBy  *string    `json:"overridden_by,omitempty"`
	OverriddenAt  *time.Time `json:"overridden_at,omitempty"`
}

type RollupDTO struct {
	OverallStatus    string `json:"overall_status"`
	GlobalStatus     string `json:"global_approval_status"`
	SpecificTotal    int    `json:"specific_total"`
	SpecificApproved int    `json:"specific_approved"`
	SpecificRejected int    `json:"specific_rejected"`
}
