package loan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sarpras-backend/internal/domain/approval"
	"sarpras-backend/internal/domain/errs"
	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/schedule"
	"sarpras-backend/internal/domain/uow"
	"sarpras-backend/pkg/id"
)

type Usecase struct {
	uow        uow.UnitOfWork
	notifier   loan.Notifier
	log        *zap.Logger
	defaultMax int
	now        func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, notifier loan.Notifier, log *zap.Logger, defaultMaxBorrowings int) *Usecase {
	return &Usecase{
		uow:        tx,
		notifier:   notifier,
		log:        log,
		defaultMax: defaultMaxBorrowings,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock swaps the time source. Tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Create checks quota and availability, persists the aggregate, seeds the
// approval workflow and increments the requester's quota — all in one
// serializable transaction.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*LoanRequestDTO, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	var (
		created *loan.LoanRequest
		rollup  *approval.StatusRollup
	)
	err := u.uow.WithinSerializableTx(ctx, func(r uow.Repos) error {
		var err error
		created, rollup, err = u.CreateInTx(ctx, r, in, 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	u.NotifyCreated(created)
	u.log.Info("loan request created",
		zap.String("request_id", created.RequestID),
		zap.String("requester_id", created.RequesterID))
	return ToDTO(created, rollup), nil
}

// NotifyCreated emits the initial-creation status change for a request.
// Creation is a transition like any other and must reach the listener; flows
// that call CreateInTx inside their own transaction invoke this after commit.
func (u *Usecase) NotifyCreated(l *loan.LoanRequest) {
	u.notifier.NotifyStatusChange(loan.StatusChange{
		OldStatus: "",
		NewStatus: loan.StatusPending,
		ActorID:   l.RequesterID,
		Request:   l,
	})
}

// CreateInTx is Create minus the transaction: the marking conversion flow
// calls it from its own transaction so hold conversion and request creation
// commit or roll back together. excludeMarkingRowID lets the converting
// marking skip colliding with itself.
func (u *Usecase) CreateInTx(ctx context.Context, r uow.Repos, in CreateInput, excludeMarkingRowID uint64) (*loan.LoanRequest, *approval.StatusRollup, error) {
	now := u.now()

	q, err := r.Quotas.GetOrCreate(ctx, in.RequesterID, u.defaultMax)
	if err != nil {
		return nil, nil, err
	}
	if !q.CanBorrow() {
		return nil, nil, errs.Validation(errs.CodeQuotaExhausted,
			"requester %s has %d of %d active loans", in.RequesterID, q.ActiveBorrowings, q.MaxBorrowings)
	}

	ref, err := schedule.RefFromColumns(in.RoomID, in.CustomLocation)
	if err != nil {
		return nil, nil, errs.Validation(errs.CodeInvalidInput, "%s", err.Error())
	}
	w := schedule.Window{StartsAt: in.StartsAt, EndsAt: in.EndsAt}
	if err := u.checkAvailability(ctx, r, ref, w, now, 0, excludeMarkingRowID); err != nil {
		return nil, nil, err
	}

	l := &loan.LoanRequest{
		RequestID:         id.NewID32(),
		RequesterID:       in.RequesterID,
		UKMID:             in.UKMID,
		EventName:         in.EventName,
		RoomID:            in.RoomID,
		CustomLocation:    in.CustomLocation,
		StartsAt:          in.StartsAt,
		EndsAt:            in.EndsAt,
		Status:            loan.StatusPending,
		ConflictGroup:     id.NewID32(),
		SupportingDocPath: in.SupportingDocPath,
		StatusUpdatedAt:   now,
	}
	for _, it := range in.Items {
		l.Items = append(l.Items, loan.LoanItem{
			ItemID:       id.NewID32(),
			EquipmentID:  it.EquipmentID,
			RequestedQty: it.RequestedQty,
		})
	}
	if err := r.Loans.Create(ctx, l); err != nil {
		return nil, nil, err
	}

	steps, err := u.seedWorkflow(ctx, r, l, ref)
	if err != nil {
		return nil, nil, err
	}
	rollup := &approval.StatusRollup{LoanRequestRowID: l.ID}
	rollup.Apply(approval.ComputeRollup(steps))
	if err := r.Approvals.CreateRollup(ctx, rollup); err != nil {
		return nil, nil, err
	}

	if err := r.Quotas.Increment(ctx, in.RequesterID); err != nil {
		return nil, nil, err
	}
	return l, rollup, nil
}

// checkAvailability guards the slot against both confirmed loans and live
// markings. Equipment-only requests (ref none) hold no slot.
func (u *Usecase) checkAvailability(ctx context.Context, r uow.Repos, ref schedule.ResourceRef, w schedule.Window, now time.Time, excludeLoanRowID, excludeMarkingRowID uint64) error {
	if ref.Kind == schedule.KindNone {
		return nil
	}
	other, err := r.Loans.FindOverlapping(ctx, ref, w, excludeLoanRowID)
	if err == nil {
		return errs.Validation(errs.CodeScheduleConflict,
			"window overlaps loan request %s", other.RequestID)
	}
	if !errs.IsNotFound(err) {
		return err
	}
	hold, err := r.Markings.FindOverlapping(ctx, ref, w, now, excludeMarkingRowID)
	if err == nil {
		return errs.Validation(errs.CodeScheduleConflict,
			"window overlaps marking %s", hold.MarkingID)
	}
	if !errs.IsNotFound(err) {
		return err
	}
	return nil
}

// seedWorkflow creates one global step per active global approver plus one
// specific step per resource that has its own approvers: the room for
// prasarana, each distinct equipment type for sarana.
func (u *Usecase) seedWorkflow(ctx context.Context, r uow.Repos, l *loan.LoanRequest, ref schedule.ResourceRef) ([]approval.WorkflowStep, error) {
	var steps []approval.WorkflowStep

	globals, err := r.Approvals.ListActiveGlobalApprovers(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range globals {
		steps = append(steps, approval.WorkflowStep{
			StepID:           id.NewID32(),
			LoanRequestRowID: l.ID,
			Type:             approval.StepGlobal,
			ApproverID:       g.UserID,
			ApprovalLevel:    g.ApprovalLevel,
			Status:           approval.StepPending,
		})
	}

	if ref.Kind == schedule.KindRoom {
		specific, err := r.Approvals.ListActiveResourceApprovers(ctx, approval.StepPrasarana, ref.RoomID)
		if err != nil {
			return nil, err
		}
		roomID := ref.RoomID
		for _, a := range specific {
			steps = append(steps, approval.WorkflowStep{
				StepID:           id.NewID32(),
				LoanRequestRowID: l.ID,
				Type:             approval.StepPrasarana,
				ResourceID:       &roomID,
				ApproverID:       a.UserID,
				ApprovalLevel:    a.ApprovalLevel,
				Status:           approval.StepPending,
			})
		}
	}

	seen := map[uint64]bool{}
	for _, it := range l.Items {
		if seen[it.EquipmentID] {
			continue
		}
		seen[it.EquipmentID] = true
		specific, err := r.Approvals.ListActiveResourceApprovers(ctx, approval.StepSarana, it.EquipmentID)
		if err != nil {
			return nil, err
		}
		eqID := it.EquipmentID
		for _, a := range specific {
			steps = append(steps, approval.WorkflowStep{
				StepID:           id.NewID32(),
				LoanRequestRowID: l.ID,
				Type:             approval.StepSarana,
				ResourceID:       &eqID,
				ApproverID:       a.UserID,
				ApprovalLevel:    a.ApprovalLevel,
				Status:           approval.StepPending,
			})
		}
	}

	for i := range steps {
		if err := r.Approvals.CreateStep(ctx, &steps[i]); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*LoanRequestDTO, error) {
	var dto *LoanRequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByRequestID(ctx, requestID)
		if err != nil {
			return err
		}
		rollup, err := r.Approvals.GetRollupByRequest(ctx, l.ID)
		if err != nil && !errs.IsNotFound(err) {
			return err
		}
		dto = ToDTO(l, rollup)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ValidatePickup moves an approved request to picked_up and allocates the
// requested serialized units, enforcing allocation exclusivity per asset.
func (u *Usecase) ValidatePickup(ctx context.Context, in PickupInput) error {
	var change loan.StatusChange
	err := u.uow.WithinLoanTx(ctx, in.RequestID, func(r uow.Repos, l *loan.LoanRequest) error {
		now := u.now()
		if !loan.CanTransition(l.Status, loan.StatusPickedUp) {
			return errs.Validation(errs.CodeInvalidTransition,
				"cannot pick up loan request in status %s", l.Status)
		}
		rollup, err := r.Approvals.GetRollupByRequest(ctx, l.ID)
		if err != nil {
			return err
		}
		if rollup.OverallStatus != approval.OverallApproved {
			return errs.Validation(errs.CodeInvalidTransition,
				"overall approval status is %s, want approved", rollup.OverallStatus)
		}

		for _, as := range in.Assignments {
			item := findItem(l, as.ItemID)
			if item == nil {
				return fmt.Errorf("loan item %s: %w", as.ItemID, errs.ErrNotFound)
			}
			for _, assetID := range as.AssetUnitIDs {
				if other, err := r.Loans.FindActiveUnitByAsset(ctx, assetID); err == nil {
					return errs.Validation(errs.CodeUnitUnavailable,
						"asset unit %d is already allocated to loan item row %d", assetID, other.LoanItemRowID)
				} else if !errs.IsNotFound(err) {
					return err
				}
				unit := &loan.LoanItemUnit{
					LoanItemRowID: item.ID,
					AssetUnitID:   assetID,
					Status:        loan.UnitActive,
					AssignedBy:    in.ValidatorID,
					AssignedAt:    now,
				}
				if err := r.Loans.CreateUnit(ctx, unit); err != nil {
					return err
				}
			}
		}

		old := l.Status
		l.Status = loan.StatusPickedUp
		l.PickupValidatedBy = &in.ValidatorID
		l.PickupValidatedAt = &now
		l.PickupPhotoPath = in.PickupPhotoPath
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		change = loan.StatusChange{OldStatus: old, NewStatus: l.Status, ActorID: in.ValidatorID, Request: l}
		return nil
	})
	if err != nil {
		return err
	}
	u.notifier.NotifyStatusChange(change)
	return nil
}

// ValidateReturn closes out a picked-up request: releases every active unit,
// frees the quota slot and marks the request returned, in one transaction.
func (u *Usecase) ValidateReturn(ctx context.Context, in ReturnInput) error {
	var change loan.StatusChange
	err := u.uow.WithinLoanTx(ctx, in.RequestID, func(r uow.Repos, l *loan.LoanRequest) error {
		now := u.now()
		if !loan.CanTransition(l.Status, loan.StatusReturned) {
			return errs.Validation(errs.CodeInvalidTransition,
				"cannot return loan request in status %s", l.Status)
		}
		if err := releaseActiveUnits(ctx, r, l.ID, in.ValidatorID, now); err != nil {
			return err
		}

		old := l.Status
		l.Status = loan.StatusReturned
		l.ReturnValidatedBy = &in.ValidatorID
		l.ReturnValidatedAt = &now
		l.ReturnPhotoPath = in.ReturnPhotoPath
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Quotas.Decrement(ctx, l.RequesterID); err != nil {
			return err
		}
		change = loan.StatusChange{OldStatus: old, NewStatus: l.Status, ActorID: in.ValidatorID, Request: l}
		return nil
	})
	if err != nil {
		return err
	}
	u.notifier.NotifyStatusChange(change)
	return nil
}

// Cancel is legal from pending, approved and picked_up only. A cancel from
// picked_up also releases any allocated units.
func (u *Usecase) Cancel(ctx context.Context, requestID, actorID, reason string) error {
	var change loan.StatusChange
	err := u.uow.WithinLoanTx(ctx, requestID, func(r uow.Repos, l *loan.LoanRequest) error {
		now := u.now()
		if !loan.CanTransition(l.Status, loan.StatusCancelled) {
			return errs.Validation(errs.CodeInvalidTransition,
				"cannot cancel loan request in status %s", l.Status)
		}
		if l.Status == loan.StatusPickedUp {
			if err := releaseActiveUnits(ctx, r, l.ID, actorID, now); err != nil {
				return err
			}
		}

		old := l.Status
		l.Status = loan.StatusCancelled
		l.CancelledBy = &actorID
		l.CancelledAt = &now
		l.CancelReason = &reason
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Quotas.Decrement(ctx, l.RequesterID); err != nil {
			return err
		}
		change = loan.StatusChange{OldStatus: old, NewStatus: l.Status, ActorID: actorID, Request: l}
		return nil
	})
	if err != nil {
		return err
	}
	u.notifier.NotifyStatusChange(change)
	return nil
}

// releaseActiveUnits is idempotent: already-released units are skipped by
// the active-only query.
func releaseActiveUnits(ctx context.Context, r uow.Repos, loanRowID uint64, by string, now time.Time) error {
	units, err := r.Loans.ListActiveUnitsByRequest(ctx, loanRowID)
	if err != nil {
		return err
	}
	for i := range units {
		unit := &units[i]
		unit.Status = loan.UnitReleased
		unit.ReleasedBy = &by
		unit.ReleasedAt = &now
		if err := r.Loans.SaveUnit(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

func findItem(l *loan.LoanRequest, itemID string) *loan.LoanItem {
	for i := range l.Items {
		if l.Items[i].ItemID == itemID {
			return &l.Items[i]
		}
	}
	return nil
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
	if in.RoomID == nil && in.CustomLocation == nil && len(in.Items) == 0 {
		return errs.Validation(errs.CodeInvalidInput, "request must reserve a location or at least one item")
	}
	for _, it := range in.Items {
		if it.RequestedQty < 1 {
			return errs.Validation(errs.CodeInvalidInput, "requested_qty must be at least 1")
		}
	}
	return nil
}
