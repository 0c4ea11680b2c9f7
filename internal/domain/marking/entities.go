package marking

import (
	"math"
	"time"

	"sarpras-backend/internal/domain/schedule"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusConverted Status = "converted"
	StatusCancelled Status = "cancelled"
)

// Marking is a temporary hold on a resource slot. ExpiresAt is the sole
// authority on validity: a row can still be stored as "active" while
// IsExpired already reports true, so consumers must never branch on the
// stored Status alone. A background sweep reconciles the stored value.
type Marking struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	MarkingID string `gorm:"size:32;uniqueIndex:ux_markings_marking_id" json:"marking_id"`

	RequesterID string  `gorm:"size:32;index:idx_markings_requester" json:"requester_id"`
	UKMID       *string `gorm:"size:32;column:ukm_id" json:"ukm_id,omitempty"`
	EventName   string  `gorm:"size:255" json:"event_name"`

	RoomID         *uint64 `gorm:"column:room_id;index:idx_markings_room" json:"room_id,omitempty"`
	CustomLocation *string `gorm:"size:255;column:custom_location" json:"custom_location,omitempty"`

	StartsAt time.Time `gorm:"column:starts_at" json:"starts_at"`
	EndsAt   time.Time `gorm:"column:ends_at" json:"ends_at"`

	ExpiresAt       time.Time  `gorm:"column:expires_at;index" json:"expires_at"`
	PlannedSubmitBy *time.Time `gorm:"column:planned_submit_by" json:"planned_submit_by,omitempty"`

	Status Status `gorm:"type:enum('active','expired','converted','cancelled');default:'active'" json:"status"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`

	ConvertedRequestID *string    `gorm:"size:32;column:converted_request_id" json:"converted_request_id,omitempty"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Marking) TableName() string { return "markings" }

func (m *Marking) Resource() (schedule.ResourceRef, error) {
	return schedule.RefFromColumns(m.RoomID, m.CustomLocation)
}

func (m *Marking) Window() schedule.Window {
	return schedule.Window{StartsAt: m.StartsAt, EndsAt: m.EndsAt}
}

// IsExpired is a pure function of now vs ExpiresAt, independent of Status.
func (m *Marking) IsExpired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// HoursUntilExpiration is ceil hours remaining, clamped to 0 once past due.
func (m *Marking) HoursUntilExpiration(now time.Time) int {
	if m.IsExpired(now) {
		return 0
	}
	return int(math.Ceil(m.ExpiresAt.Sub(now).Hours()))
}

// HoldsSlot reports whether this marking still claims its time window and
// must be counted by the availability checker.
func (m *Marking) HoldsSlot(now time.Time) bool {
	return m.Status == StatusActive && !m.IsExpired(now)
}

func (m *Marking) CanExtend(now time.Time) bool {
	return m.Status == StatusActive && !m.IsExpired(now)
}

// CanBeConverted allows conversion into a formal loan request only while the
// hold is live.
func (m *Marking) CanBeConverted(now time.Time) bool {
	return m.Status == StatusActive && !m.IsExpired(now)
}

func (m *Marking) CanCancel() bool { return m.Status == StatusActive }
