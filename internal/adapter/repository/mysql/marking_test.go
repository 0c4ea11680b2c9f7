package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"sarpras-backend/internal/domain/errs"
	domain "sarpras-backend/internal/domain/marking"
	"sarpras-backend/internal/domain/schedule"
	"sarpras-backend/pkg/id"
)

var markingNow = time.Date(2025, 9, 8, 9, 0, 0, 0, time.UTC)

func makeMarking(roomID uint64, start, end time.Time) *domain.Marking {
	r := roomID
	return &domain.Marking{
		MarkingID:   id.NewID32(),
		RequesterID: id.NewID32(),
		EventName:   "Gladi Bersih",
		RoomID:      &r,
		StartsAt:    start,
		EndsAt:      end,
		ExpiresAt:   markingNow.AddDate(0, 0, 3),
		Status:      domain.StatusActive,
	}
}

func TestMarkingCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewMarkingRepository(db)
	ctx := context.Background()

	m := makeMarking(1, markingNow.Add(48*time.Hour), markingNow.Add(50*time.Hour))
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByMarkingID(ctx, m.MarkingID)
	if err != nil {
		t.Fatalf("GetByMarkingID: %v", err)
	}
	if got.MarkingID != m.MarkingID || got.Status != domain.StatusActive {
		t.Errorf("unexpected marking: %+v", got)
	}

	if _, err := repo.GetByMarkingID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("missing marking: err = %v, want ErrNotFound", err)
	}
}

func TestMarkingFindOverlapping(t *testing.T) {
	db := openTestDB(t)
	repo := NewMarkingRepository(db)
	ctx := context.Background()

	day := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	m := makeMarking(1, day.Add(10*time.Hour), day.Add(12*time.Hour))
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	w := schedule.Window{StartsAt: day.Add(11 * time.Hour), EndsAt: day.Add(13 * time.Hour)}

	got, err := repo.FindOverlapping(ctx, schedule.Room(1), w, markingNow, 0)
	if err != nil {
		t.Fatalf("live hold: %v", err)
	}
	if got.MarkingID != m.MarkingID {
		t.Errorf("found wrong marking: %+v", got)
	}

	// past expires_at the hold stops counting even while stored active
	past := m.ExpiresAt.Add(time.Minute)
	if _, err := repo.FindOverlapping(ctx, schedule.Room(1), w, past, 0); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expired hold: err = %v, want ErrNotFound", err)
	}

	// self-exclusion for the conversion flow
	if _, err := repo.FindOverlapping(ctx, schedule.Room(1), w, markingNow, m.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("self-exclusion: err = %v, want ErrNotFound", err)
	}

	// touching boundary is free
	touch := schedule.Window{StartsAt: day.Add(12 * time.Hour), EndsAt: day.Add(14 * time.Hour)}
	if _, err := repo.FindOverlapping(ctx, schedule.Room(1), touch, markingNow, 0); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("touching boundary: err = %v, want ErrNotFound", err)
	}

	// cancelled holds release the slot
	m.Status = domain.StatusCancelled
	if err := repo.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.FindOverlapping(ctx, schedule.Room(1), w, markingNow, 0); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cancelled hold: err = %v, want ErrNotFound", err)
	}
}

func TestMarkingListExpiredActive(t *testing.T) {
	db := openTestDB(t)
	repo := NewMarkingRepository(db)
	ctx := context.Background()

	day := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		m := makeMarking(uint64(i+1), day.Add(10*time.Hour), day.Add(12*time.Hour))
		m.ExpiresAt = markingNow.Add(-time.Duration(i+1) * time.Hour)
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	live := makeMarking(9, day.Add(10*time.Hour), day.Add(12*time.Hour))
	if err := repo.Create(ctx, live); err != nil {
		t.Fatalf("Create: %v", err)
	}

	expired, err := repo.ListExpiredActive(ctx, markingNow, 0)
	if err != nil {
		t.Fatalf("ListExpiredActive: %v", err)
	}
	if len(expired) != 3 {
		t.Fatalf("expired = %d, want 3", len(expired))
	}
	for _, m := range expired {
		if m.MarkingID == live.MarkingID {
			t.Fatal("live hold must not be listed")
		}
	}

	limited, err := repo.ListExpiredActive(ctx, markingNow, 2)
	if err != nil {
		t.Fatalf("ListExpiredActive limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited = %d, want 2", len(limited))
	}
}
