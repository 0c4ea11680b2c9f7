package loan

import (
	"time"

	"sarpras-backend/internal/domain/approval"
	"sarpras-backend/internal/domain/loan"
)

type ItemInput struct {
	EquipmentID  uint64 `json:"equipment_id"`
	RequestedQty int    `json:"requested_qty"`
}

type CreateInput struct {
	RequesterID string  `json:"requester_id"`
	UKMID       *string `json:"ukm_id,omitempty"`
	EventName   string  `json:"event_name"`

	// Exactly one of RoomID / CustomLocation, or neither for an
	// equipment-only request.
	RoomID         *uint64 `json:"room_id,omitempty"`
	CustomLocation *string `json:"custom_location,omitempty"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	SupportingDocPath *string     `json:"supporting_doc_path,omitempty"`
	Items             []ItemInput `json:"items,omitempty"`
}

// UnitAssignment picks serialized asset units for one loan item at pickup.
type UnitAssignment struct {
	ItemID       string   `json:"item_id"`
	AssetUnitIDs []uint64 `json:"asset_unit_ids"`
}

type PickupInput struct {
	RequestID       string           `json:"-"`
	ValidatorID     string           `json:"validator_id"`
	Assignments     []UnitAssignment `json:"assignments,omitempty"`
	PickupPhotoPath *string          `json:"pickup_photo_path,omitempty"`
}

type ReturnInput struct {
	RequestID       string  `json:"-"`
	ValidatorID     string  `json:"validator_id"`
	ReturnPhotoPath *string `json:"return_photo_path,omitempty"`
}

type ItemDTO struct {
	ItemID       string `json:"item_id"`
	EquipmentID  uint64 `json:"equipment_id"`
	RequestedQty int    `json:"requested_qty"`
	ApprovedQty  int    `json:"approved_qty"`
}

type LoanRequestDTO struct {
	RequestID      string     `json:"request_id"`
	RequesterID    string     `json:"requester_id"`
	UKMID          *string    `json:"ukm_id,omitempty"`
	EventName      string     `json:"event_name"`
	RoomID         *uint64    `json:"room_id,omitempty"`
	CustomLocation *string    `json:"custom_location,omitempty"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         time.Time  `json:"ends_at"`
	Status         string     `json:"status"`
	ConflictGroup  string     `json:"conflict_group,omitempty"`
	OverallStatus  string     `json:"overall_status,omitempty"`
	Items          []ItemDTO  `json:"items,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func ToDTO(l *loan.LoanRequest, rollup *approval.StatusRollup) *LoanRequestDTO {
	dto := &LoanRequestDTO{
		RequestID:      l.RequestID,
		RequesterID:    l.RequesterID,
		UKMID:          l.UKMID,
		EventName:      l.EventName,
		RoomID:         l.RoomID,
		CustomLocation: l.CustomLocation,
		StartsAt:       l.StartsAt,
		EndsAt:         l.EndsAt,
		Status:         string(l.Status),
		ConflictGroup:  l.ConflictGroup,
		CreatedAt:      l.CreatedAt,
	}
	if rollup != nil {
		dto.OverallStatus = string(rollup.OverallStatus)
	}
	for i := range l.Items {
		it := &l.Items[i]
		dto.Items = append(dto.Items, ItemDTO{
			ItemID:       it.ItemID,
			EquipmentID:  it.EquipmentID,
			RequestedQty: it.RequestedQty,
			ApprovedQty:  it.EffectiveApprovedQty(),
		})
	}
	return dto
}
