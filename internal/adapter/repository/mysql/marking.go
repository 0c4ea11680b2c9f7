package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sarpras-backend/internal/domain/errs"
	markingDomain "sarpras-backend/internal/domain/marking"
	"sarpras-backend/internal/domain/schedule"
)

type MarkingRepository struct{ db *gorm.DB }

func NewMarkingRepository(db *gorm.DB) *MarkingRepository { return &MarkingRepository{db: db} }

func (r *MarkingRepository) Create(ctx context.Context, m *markingDomain.Marking) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MarkingRepository) Save(ctx context.Context, m *markingDomain.Marking) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MarkingRepository) GetByMarkingID(ctx context.Context, markingID string) (*markingDomain.Marking, error) {
	var out markingDomain.Marking
	res := r.db.WithContext(ctx).Where("marking_id = ?", markingID).First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *MarkingRepository) GetByMarkingIDForUpdate(ctx context.Context, markingID string) (*markingDomain.Marking, error) {
	var out markingDomain.Marking
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("marking_id = ?", markingID).
		First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

// FindOverlapping counts only holds that still claim their slot: stored
// status active AND expires_at ahead of now. The expires_at predicate is in
// the query because the stored status may lag behind reality.
func (r *MarkingRepository) FindOverlapping(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, now time.Time, excludeRowID uint64) (*markingDomain.Marking, error) {
	if ref.Kind == schedule.KindNone {
		return nil, errs.ErrNotFound
	}
	q := r.db.WithContext(ctx).
		Where("status = ?", markingDomain.StatusActive).
		Where("expires_at > ?", now).
		Where("starts_at < ? AND ends_at > ?", w.EndsAt, w.StartsAt)
	switch ref.Kind {
	case schedule.KindRoom:
		q = q.Where("room_id = ?", ref.RoomID)
	case schedule.KindCustomLocation:
		q = q.Where("custom_location = ?", ref.CustomLocation)
	}
	if excludeRowID > 0 {
		q = q.Where("id <> ?", excludeRowID)
	}
	var out markingDomain.Marking
	res := q.Order("starts_at ASC, id ASC").First(&out)
	if res.Error != nil {
		return nil, orNotFound(res.Error)
	}
	return &out, nil
}

func (r *MarkingRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]markingDomain.Marking, error) {
	var out []markingDomain.Marking
	q := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", markingDomain.StatusActive, now).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
