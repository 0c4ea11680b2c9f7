package loan

import (
	"time"

	"gorm.io/gorm"

	"sarpras-backend/internal/domain/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPickedUp  Status = "picked_up"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// LoanRequest is the peminjaman aggregate root. Status only moves forward
// (pending → approved → picked_up → returned, or pending → rejected) except
// for the explicit cancel branch; rows are never hard-deleted.
type LoanRequest struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	RequestID string `gorm:"size:32;uniqueIndex:ux_loan_requests_request_id" json:"request_id"`

	RequesterID string  `gorm:"size:32;index:idx_loan_requests_requester" json:"requester_id"`
	UKMID       *string `gorm:"size:32;column:ukm_id" json:"ukm_id,omitempty"`
	EventName   string  `gorm:"size:255" json:"event_name"`

	// Polymorphic resource columns; rebuilt into a schedule.ResourceRef via
	// Resource(). At most one of the two is non-nil.
	RoomID         *uint64 `gorm:"column:room_id;index:idx_loan_requests_room" json:"room_id,omitempty"`
	CustomLocation *string `gorm:"size:255;column:custom_location" json:"custom_location,omitempty"`

	StartsAt time.Time `gorm:"column:starts_at;index:idx_loan_requests_window" json:"starts_at"`
	EndsAt   time.Time `gorm:"column:ends_at" json:"ends_at"`

	Status          Status  `gorm:"type:enum('pending','approved','rejected','picked_up','returned','cancelled');default:'pending'" json:"status"`
	ConflictGroup   string  `gorm:"size:32;column:conflict_group;index" json:"conflict_group,omitempty"`
	RejectionReason *string `gorm:"type:text;column:rejection_reason" json:"rejection_reason,omitempty"`

	SupportingDocPath *string `gorm:"type:text;column:supporting_doc_path" json:"supporting_doc_path,omitempty"`
	PickupPhotoPath   *string `gorm:"type:text;column:pickup_photo_path" json:"pickup_photo_path,omitempty"`
	ReturnPhotoPath   *string `gorm:"type:text;column:return_photo_path" json:"return_photo_path,omitempty"`

	ApprovedBy        *string    `gorm:"size:32;column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	PickupValidatedBy *string    `gorm:"size:32;column:pickup_validated_by" json:"pickup_validated_by,omitempty"`
	PickupValidatedAt *time.Time `gorm:"column:pickup_validated_at" json:"pickup_validated_at,omitempty"`
	ReturnValidatedBy *string    `gorm:"size:32;column:return_validated_by" json:"return_validated_by,omitempty"`
	ReturnValidatedAt *time.Time `gorm:"column:return_validated_at" json:"return_validated_at,omitempty"`
	CancelledBy       *string    `gorm:"size:32;column:cancelled_by" json:"cancelled_by,omitempty"`
	CancelledAt       *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason      *string    `gorm:"type:text;column:cancel_reason" json:"cancel_reason,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Items []LoanItem `gorm:"foreignKey:LoanRequestRowID" json:"items,omitempty"`
}

func (LoanRequest) TableName() string { return "loan_requests" }

func (l *LoanRequest) Resource() (schedule.ResourceRef, error) {
	return schedule.RefFromColumns(l.RoomID, l.CustomLocation)
}

func (l *LoanRequest) Window() schedule.Window {
	return schedule.Window{StartsAt: l.StartsAt, EndsAt: l.EndsAt}
}

// ActiveStatuses are the states that still occupy the requested slot and
// count against the requester's quota.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusPickedUp}
}

func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusReturned || s == StatusCancelled
}

// CanTransition encodes the one-directional lifecycle. Cancel is the only
// branch reachable from more than one state.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusApproved, StatusRejected:
		return from == StatusPending
	case StatusPickedUp:
		return from == StatusApproved
	case StatusReturned:
		return from == StatusPickedUp
	case StatusCancelled:
		return from == StatusPending || from == StatusApproved || from == StatusPickedUp
	default:
		return false
	}
}

// LoanItem is one requested equipment line on a LoanRequest. ApprovedQty
// stays nil until an approver decides; partial approval is allowed.
type LoanItem struct {
	ID               uint64 `gorm:"primaryKey;column:id" json:"-"`
	ItemID           string `gorm:"size:32;uniqueIndex:ux_loan_items_item_id" json:"item_id"`
	LoanRequestRowID uint64 `gorm:"column:loan_request_id;index" json:"-"`
	EquipmentID      uint64 `gorm:"column:equipment_id;index" json:"equipment_id"`
	RequestedQty     int    `gorm:"column:requested_qty" json:"requested_qty"`
	ApprovedQty      *int   `gorm:"column:approved_qty" json:"approved_qty,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Units []LoanItemUnit `gorm:"foreignKey:LoanItemRowID" json:"units,omitempty"`
}

func (LoanItem) TableName() string { return "loan_items" }

// EffectiveApprovedQty falls back to the requested quantity when no explicit
// decision was recorded, then to the number of allocated units.
func (i *LoanItem) EffectiveApprovedQty() int {
	if i.ApprovedQty != nil {
		return *i.ApprovedQty
	}
	if i.RequestedQty > 0 {
		return i.RequestedQty
	}
	n := 0
	for _, u := range i.Units {
		if u.Status == UnitActive {
			n++
		}
	}
	return n
}

type UnitStatus string

const (
	UnitActive   UnitStatus = "active"
	UnitReleased UnitStatus = "released"
)

// LoanItemUnit binds one serialized asset unit to a loan item. Exclusivity
// (one active allocation per asset unit) is enforced by the allocation
// ledger inside the pickup transaction, not by a row constraint.
type LoanItemUnit struct {
	ID            uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanItemRowID uint64     `gorm:"column:loan_item_id;index" json:"-"`
	AssetUnitID   uint64     `gorm:"column:asset_unit_id;index:idx_loan_item_units_asset" json:"asset_unit_id"`
	Status        UnitStatus `gorm:"type:enum('active','released');default:'active'" json:"status"`
	AssignedBy    string     `gorm:"size:32;column:assigned_by" json:"assigned_by"`
	AssignedAt    time.Time  `gorm:"column:assigned_at" json:"assigned_at"`
	ReleasedBy    *string    `gorm:"size:32;column:released_by" json:"released_by,omitempty"`
	ReleasedAt    *time.Time `gorm:"column:released_at" json:"released_at,omitempty"`
}

func (LoanItemUnit) TableName() string { return "loan_item_units" }
