package marking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sarpras-backend/internal/domain/errs"
	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/marking"
	"sarpras-backend/internal/domain/schedule"
	"sarpras-backend/internal/domain/uow"
	loanuc "sarpras-backend/internal/usecase/loan"
	"sarpras-backend/pkg/id"
)

type Usecase struct {
	uow     uow.UnitOfWork
	loans   *loanuc.Usecase
	log     *zap.Logger
	now     func() time.Time
	defaultDurationDays int
	maxExtensionDays    int
}

func NewUsecase(tx uow.UnitOfWork, loans *loanuc.Usecase, log *zap.Logger, defaultDurationDays, maxExtensionDays int) *Usecase {
	return &Usecase{
		uow:                 tx,
		loans:               loans,
		log:                 log,
		now:                 func() time.Time { return time.Now().UTC() },
		defaultDurationDays: defaultDurationDays,
		maxExtensionDays:    maxExtensionDays,
	}
}

// WithClock swaps the time source. Tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Create places a time-boxed hold on a resource slot. The availability check
// and the insert share one serializable transaction.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*MarkingDTO, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	now := u.now()
	days := in.DurationDays
	if days <= 0 {
		days = u.defaultDurationDays
	}

	var m *marking.Marking
	err := u.uow.WithinSerializableTx(ctx, func(r uow.Repos) error {
		ref, err := schedule.RefFromColumns(in.RoomID, in.CustomLocation)
		if err != nil {
			return errs.Validation(errs.CodeInvalidInput, "%s", err.Error())
		}
		w := schedule.Window{StartsAt: in.StartsAt, EndsAt: in.EndsAt}

		if other, err := r.Loans.FindOverlapping(ctx, ref, w, 0); err == nil {
			return errs.Validation(errs.CodeScheduleConflict,
				"window overlaps loan request %s", other.RequestID)
		} else if !errs.IsNotFound(err) {
			return err
		}
		if hold, err := r.Markings.FindOverlapping(ctx, ref, w, now, 0); err == nil {
			return errs.Validation(errs.CodeScheduleConflict,
				"window overlaps marking %s", hold.MarkingID)
		} else if !errs.IsNotFound(err) {
			return err
		}

		m = &marking.Marking{
			MarkingID:       id.NewID32(),
			RequesterID:     in.RequesterID,
			UKMID:           in.UKMID,
			EventName:       in.EventName,
			RoomID:          in.RoomID,
			CustomLocation:  in.CustomLocation,
			StartsAt:        in.StartsAt,
			EndsAt:          in.EndsAt,
			ExpiresAt:       now.AddDate(0, 0, days),
			PlannedSubmitBy: in.PlannedSubmitBy,
			Status:          marking.StatusActive,
			Notes:           in.Notes,
		}
		return r.Markings.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("marking created",
		zap.String("marking_id", m.MarkingID),
		zap.Time("expires_at", m.ExpiresAt))
	return toDTO(m, now), nil
}

func (u *Usecase) Get(ctx context.Context, markingID string) (*MarkingDTO, error) {
	var m *marking.Marking
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		m, err = r.Markings.GetByMarkingID(ctx, markingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDTO(m, u.now()), nil
}

// Extend pushes expires_at forward by whole days from its current value,
// never from now. Only live holds can be extended, and never past the
// configured cap per call.
func (u *Usecase) Extend(ctx context.Context, markingID string, days int) (*MarkingDTO, error) {
	if days < 1 {
		return nil, errs.Validation(errs.CodeInvalidInput, "days must be at least 1")
	}
	if days > u.maxExtensionDays {
		return nil, errs.Validation(errs.CodeExceedsMaxExtension,
			"extension of %d days exceeds the %d day cap", days, u.maxExtensionDays)
	}
	now := u.now()
	var m *marking.Marking
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		m, err = r.Markings.GetByMarkingIDForUpdate(ctx, markingID)
		if err != nil {
			return err
		}
		if m.IsExpired(now) {
			return errs.Validation(errs.CodeExpired, "marking %s expired at %s", markingID, m.ExpiresAt)
		}
		if !m.CanExtend(now) {
			return errs.Validation(errs.CodeInvalidTransition,
				"cannot extend marking in status %s", m.Status)
		}
		m.ExpiresAt = m.ExpiresAt.AddDate(0, 0, days)
		return r.Markings.Save(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(m, now), nil
}

// Convert turns a live hold into a formal loan request. The marking flips to
// converted and the request is created in the same transaction, so a failed
// creation rolls the hold back too.
func (u *Usecase) Convert(ctx context.Context, markingID string) (*loanuc.LoanRequestDTO, error) {
	now := u.now()
	var (
		dto     *loanuc.LoanRequestDTO
		created *loan.LoanRequest
	)
	err := u.uow.WithinSerializableTx(ctx, func(r uow.Repos) error {
		m, err := r.Markings.GetByMarkingIDForUpdate(ctx, markingID)
		if err != nil {
			return err
		}
		if !m.CanBeConverted(now) {
			return errs.Validation(errs.CodeNotConvertible,
				"marking %s is %s (expired=%t)", markingID, m.Status, m.IsExpired(now))
		}

		l, rollup, err := u.loans.CreateInTx(ctx, r, loanuc.CreateInput{
			RequesterID:    m.RequesterID,
			UKMID:          m.UKMID,
			EventName:      m.EventName,
			RoomID:         m.RoomID,
			CustomLocation: m.CustomLocation,
			StartsAt:       m.StartsAt,
			EndsAt:         m.EndsAt,
		}, m.ID)
		if err != nil {
			return err
		}

		m.Status = marking.StatusConverted
		m.ConvertedRequestID = &l.RequestID
		if err := r.Markings.Save(ctx, m); err != nil {
			return err
		}
		created = l
		dto = loanuc.ToDTO(l, rollup)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// the converted request was created like any other; the listener hears it
	u.loans.NotifyCreated(created)
	u.log.Info("marking converted", zap.String("marking_id", markingID), zap.String("request_id", dto.RequestID))
	return dto, nil
}

// Cancel releases the hold's claim on its window. Legal only while active.
func (u *Usecase) Cancel(ctx context.Context, markingID string) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := r.Markings.GetByMarkingIDForUpdate(ctx, markingID)
		if err != nil {
			return err
		}
		if !m.CanCancel() {
			return errs.Validation(errs.CodeInvalidTransition,
				"cannot cancel marking in status %s", m.Status)
		}
		now := u.now()
		m.Status = marking.StatusCancelled
		m.CancelledAt = &now
		return r.Markings.Save(ctx, m)
	})
}

// Sweep reconciles stored status with reality: rows past expires_at but
// still stored as active flip to expired. Consumers must keep using
// IsExpired regardless; the sweep only narrows the disagreement window.
func (u *Usecase) Sweep(ctx context.Context, batchSize int) (int, error) {
	now := u.now()
	flipped := 0
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		expired, err := r.Markings.ListExpiredActive(ctx, now, batchSize)
		if err != nil {
			return err
		}
		for i := range expired {
			m := &expired[i]
			m.Status = marking.StatusExpired
			if err := r.Markings.Save(ctx, m); err != nil {
				return err
			}
			flipped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		u.log.Info("expired markings reconciled", zap.Int("count", flipped))
	}
	return flipped, nil
}

func validateCreate(in CreateInput) error {
	if in.RequesterID == "" || len(in.RequesterID) != 32 {
		return errs.Validation(errs.CodeInvalidInput, "requester_id must be a 32-char id")
	}
	if in.EventName == "" {
		return errs.Validation(errs.CodeInvalidInput, "event_name is required")
	}
	if !in.StartsAt.Before(in.EndsAt) {
		return errs.Validation(errs.CodeInvalidInput, "starts_at must be before ends_at")
	}
	if in.RoomID != nil && in.CustomLocation != nil {
		return errs.Validation(errs.CodeInvalidInput, "room_id and custom_location are mutually exclusive")
	}
	if in.RoomID == nil && in.CustomLocation == nil {
		return errs.Validation(errs.CodeInvalidInput, "a marking must reference a room or a custom location")
	}
	return nil
}
