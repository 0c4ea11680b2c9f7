package quota

import "time"

// UserQuota tracks one requester's active loan count against their cap.
// The cap is soft: enforced at request creation, never as a DB constraint.
type UserQuota struct {
	ID               uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID           string    `gorm:"size:32;column:user_id;uniqueIndex:ux_user_quotas_user" json:"user_id"`
	ActiveBorrowings int       `gorm:"column:active_borrowings;default:0" json:"active_borrowings"`
	MaxBorrowings    int       `gorm:"column:max_borrowings" json:"max_borrowings"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserQuota) TableName() string { return "user_quotas" }

func (q *UserQuota) CanBorrow() bool { return q.ActiveBorrowings < q.MaxBorrowings }
