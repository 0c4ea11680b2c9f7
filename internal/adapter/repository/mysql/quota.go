package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	quotaDomain "sarpras-backend/internal/domain/quota"
)

type QuotaRepository struct{ db *gorm.DB }

func NewQuotaRepository(db *gorm.DB) *QuotaRepository { return &QuotaRepository{db: db} }

func (r *QuotaRepository) GetOrCreate(ctx context.Context, userID string, defaultMax int) (*quotaDomain.UserQuota, error) {
	var out quotaDomain.UserQuota
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Attrs(quotaDomain.UserQuota{UserID: userID, MaxBorrowings: defaultMax}).
		FirstOrCreate(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *QuotaRepository) GetForUpdate(ctx context.Context, userID string) (*quotaDomain.UserQuota, error) {
	var out quotaDomain.UserQuota
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

// Increment is a single SQL expression update so concurrent approvals for
// the same user never lose counts.
func (r *QuotaRepository) Increment(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&quotaDomain.UserQuota{}).
		Where("user_id = ?", userID).
		UpdateColumn("active_borrowings", gorm.Expr("active_borrowings + 1")).Error
}

// Decrement floors at zero via the guard in the WHERE clause; decrementing
// an already-zero counter is a no-op.
func (r *QuotaRepository) Decrement(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&quotaDomain.UserQuota{}).
		Where("user_id = ? AND active_borrowings > 0", userID).
		UpdateColumn("active_borrowings", gorm.Expr("active_borrowings - 1")).Error
}
