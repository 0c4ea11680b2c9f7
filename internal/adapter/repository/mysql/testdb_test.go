package mysql

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schema only for tests (no ENUM) ---

type loanRequestSQLite struct {
	ID                uint64         `gorm:"primaryKey;column:id"`
	RequestID         string         `gorm:"size:32;column:request_id"`
	RequesterID       string         `gorm:"size:32;column:requester_id"`
	UKMID             *string        `gorm:"size:32;column:ukm_id"`
	EventName         string         `gorm:"size:255;column:event_name"`
	RoomID            *uint64        `gorm:"column:room_id"`
	CustomLocation    *string        `gorm:"size:255;column:custom_location"`
	StartsAt          time.Time      `gorm:"column:starts_at"`
	EndsAt            time.Time      `gorm:"column:ends_at"`
	Status            string         `gorm:"type:text;column:status"` // ← no enum
	ConflictGroup     string         `gorm:"size:32;column:conflict_group"`
	RejectionReason   *string        `gorm:"type:text;column:rejection_reason"`
	SupportingDocPath *string        `gorm:"type:text;column:supporting_doc_path"`
	PickupPhotoPath   *string        `gorm:"type:text;column:pickup_photo_path"`
	ReturnPhotoPath   *string        `gorm:"type:text;column:return_photo_path"`
	ApprovedBy        *string        `gorm:"size:32;column:approved_by"`
	ApprovedAt        *time.Time     `gorm:"column:approved_at"`
	PickupValidatedBy *string        `gorm:"size:32;column:pickup_validated_by"`
	PickupValidatedAt *time.Time     `gorm:"column:pickup_validated_at"`
	ReturnValidatedBy *string        `gorm:"size:32;column:return_validated_by"`
	ReturnValidatedAt *time.Time     `gorm:"column:return_validated_at"`
	CancelledBy       *string        `gorm:"size:32;column:cancelled_by"`
	CancelledAt       *time.Time     `gorm:"column:cancelled_at"`
	CancelReason      *string        `gorm:"type:text;column:cancel_reason"`
	StatusUpdatedAt   time.Time      `gorm:"column:status_updated_at"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (loanRequestSQLite) TableName() string { return "loan_requests" }

type loanItemSQLite struct {
	ID               uint64    `gorm:"primaryKey;column:id"`
	ItemID           string    `gorm:"size:32;column:item_id"`
	LoanRequestRowID uint64    `gorm:"column:loan_request_id"`
	EquipmentID      uint64    `gorm:"column:equipment_id"`
	RequestedQty     int       `gorm:"column:requested_qty"`
	ApprovedQty      *int      `gorm:"column:approved_qty"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (loanItemSQLite) TableName() string { return "loan_items" }

type loanItemUnitSQLite struct {
	ID            uint64     `gorm:"primaryKey;column:id"`
	LoanItemRowID uint64     `gorm:"column:loan_item_id"`
	AssetUnitID   uint64     `gorm:"column:asset_unit_id"`
	Status        string     `gorm:"type:text;column:status"`
	AssignedBy    string     `gorm:"size:32;column:assigned_by"`
	AssignedAt    time.Time  `gorm:"column:assigned_at"`
	ReleasedBy    *string    `gorm:"size:32;column:released_by"`
	ReleasedAt    *time.Time `gorm:"column:released_at"`
}

func (loanItemUnitSQLite) TableName() string { return "loan_item_units" }

type workflowStepSQLite struct {
	ID               uint64     `gorm:"primaryKey;column:id"`
	StepID           string     `gorm:"size:32;column:step_id"`
	LoanRequestRowID uint64     `gorm:"column:loan_request_id"`
	Type             string     `gorm:"type:text;column:type"`
	ResourceID       *uint64    `gorm:"column:resource_id"`
	ApproverID       string     `gorm:"size:32;column:approver_id"`
	ApprovalLevel    int        `gorm:"column:approval_level"`
	Status           string     `gorm:"type:text;column:status"`
	Notes            string     `gorm:"type:text;column:notes"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	RejectedAt       *time.Time `gorm:"column:rejected_at"`
	OverriddenBy     *string    `gorm:"size:32;column:overridden_by"`
	OverriddenAt     *time.Time `gorm:"column:overridden_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (workflowStepSQLite) TableName() string { return "loan_approval_workflows" }

type statusRollupSQLite struct {
	ID               uint64     `gorm:"primaryKey;column:id"`
	LoanRequestRowID uint64     `gorm:"column:loan_request_id"`
	OverallStatus    string     `gorm:"type:text;column:overall_status"`
	GlobalStatus     string     `gorm:"type:text;column:global_status"`
	GlobalDecidedBy  *string    `gorm:"size:32;column:global_decided_by"`
	GlobalDecidedAt  *time.Time `gorm:"column:global_decided_at"`
	GlobalReason     *string    `gorm:"type:text;column:global_reason"`
	SpecificTotal    int        `gorm:"column:specific_total"`
	SpecificApproved int        `gorm:"column:specific_approved"`
	SpecificRejected int        `gorm:"column:specific_rejected"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (statusRollupSQLite) TableName() string { return "loan_approval_statuses" }

type globalApproverSQLite struct {
	ID            uint64    `gorm:"primaryKey;column:id"`
	UserID        string    `gorm:"size:32;column:user_id"`
	ApprovalLevel int       `gorm:"column:approval_level"`
	IsActive      bool      `gorm:"column:is_active"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (globalApproverSQLite) TableName() string { return "global_approvers" }

type resourceApproverSQLite struct {
	ID            uint64    `gorm:"primaryKey;column:id"`
	ResourceType  string    `gorm:"type:text;column:resource_type"`
	ResourceID    uint64    `gorm:"column:resource_id"`
	UserID        string    `gorm:"size:32;column:user_id"`
	ApprovalLevel int       `gorm:"column:approval_level"`
	IsActive      bool      `gorm:"column:is_active"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (resourceApproverSQLite) TableName() string { return "resource_approvers" }

type userQuotaSQLite struct {
	ID               uint64    `gorm:"primaryKey;column:id"`
	UserID           string    `gorm:"size:32;column:user_id"`
	ActiveBorrowings int       `gorm:"column:active_borrowings"`
	MaxBorrowings    int       `gorm:"column:max_borrowings"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (userQuotaSQLite) TableName() string { return "user_quotas" }

type markingSQLite struct {
	ID                 uint64     `gorm:"primaryKey;column:id"`
	MarkingID          string     `gorm:"size:32;column:marking_id"`
	RequesterID        string     `gorm:"size:32;column:requester_id"`
	UKMID              *string    `gorm:"size:32;column:ukm_id"`
	EventName          string     `gorm:"size:255;column:event_name"`
	RoomID             *uint64    `gorm:"column:room_id"`
	CustomLocation     *string    `gorm:"size:255;column:custom_location"`
	StartsAt           time.Time  `gorm:"column:starts_at"`
	EndsAt             time.Time  `gorm:"column:ends_at"`
	ExpiresAt          time.Time  `gorm:"column:expires_at"`
	PlannedSubmitBy    *time.Time `gorm:"column:planned_submit_by"`
	Status             string     `gorm:"type:text;column:status"`
	Notes              string     `gorm:"type:text;column:notes"`
	ConvertedRequestID *string    `gorm:"size:32;column:converted_request_id"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (markingSQLite) TableName() string { return "markings" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// IMPORTANT: migrate the sqlite-safe models, NOT the domain models.
	err = db.AutoMigrate(
		&loanRequestSQLite{},
		&loanItemSQLite{},
		&loanItemUnitSQLite{},
		&workflowStepSQLite{},
		&statusRollupSQLite{},
		&globalApproverSQLite{},
		&resourceApproverSQLite{},
		&userQuotaSQLite{},
		&markingSQLite{},
	)
	if err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
