package marking

import (
	"time"

	"sarpras-backend/internal/domain/marking"
)

type CreateInput struct {
	RequesterID string  `json:"requester_id"`
	UKMID       *string `json:"ukm_id,omitempty"`
	EventName   string  `json:"event_name"`

	RoomID         *uint64 `json:"room_id,omitempty"`
	CustomLocation *string `json:"custom_location,omitempty"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	// DurationDays defaults to the configured marking duration when 0.
	DurationDays    int        `json:"duration_days,omitempty"`
	PlannedSubmitBy *time.Time `json:"planned_submit_by,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

type MarkingDTO struct {
	MarkingID       string     `json:"marking_id"`
	RequesterID     string     `json:"requester_id"`
	UKMID           *string    `json:"ukm_id,omitempty"`
	EventName       string     `json:"event_name"`
	RoomID          *uint64    `json:"room_id,omitempty"`
	CustomLocation  *string    `json:"custom_location,omitempty"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          time.Time  `json:"ends_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	PlannedSubmitBy *time.Time `json:"planned_submit_by,omitempty"`
	Status          string     `json:"status"`
	Expired         bool       `json:"expired"`
	HoursLeft       int        `json:"hours_until_expiration"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toDTO(m *marking.Marking, now time.Time) *MarkingDTO {
	return &MarkingDTO{
		MarkingID:       m.MarkingID,
		RequesterID:     m.RequesterID,
		UKMID:           m.UKMID,
		EventName:       m.EventName,
		RoomID:          m.RoomID,
		CustomLocation:  m.CustomLocation,
		StartsAt:        m.StartsAt,
		EndsAt:          m.EndsAt,
		ExpiresAt:       m.ExpiresAt,
		PlannedSubmitBy: m.PlannedSubmitBy,
		Status:          string(m.Status),
		Expired:         m.IsExpired(now),
		HoursLeft:       m.HoursUntilExpiration(now),
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}
