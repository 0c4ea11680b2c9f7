package approval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sarpras-backend/internal/domain/approval"
	"sarpras-backend/internal/domain/errs"
	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/uow"
)

type Usecase struct {
	uow      uow.UnitOfWork
	notifier loan.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, notifier loan.Notifier, log *zap.Logger) *Usecase {
	return &Usecase{
		uow:      tx,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock swaps the time source. Tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// DecideGlobal records the caller's decision on their global step of the
// request, then recomputes the rollup and propagates it to the loan status
// inside the same transaction.
func (u *Usecase) DecideGlobal(ctx context.Context, in DecideGlobalInput) (*RollupDTO, error) {
	if in.Decision != DecisionApprove && in.Decision != DecisionReject {
		return nil, errs.Validation(errs.CodeInvalidInput, "decision must be approve or reject")
	}
	var (
		dto    *RollupDTO
		change *loan.StatusChange
	)
	err := u.uow.WithinLoanTx(ctx, in.RequestID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Status.IsTerminal() {
			return errs.Validation(errs.CodeInvalidTransition,
				"loan request is already %s", l.Status)
		}
		steps, err := r.Approvals.ListStepsByRequest(ctx, l.ID)
		if err != nil {
			return err
		}
		var step *approval.WorkflowStep
		for i := range steps {
			if steps[i].Type == approval.StepGlobal && steps[i].ApproverID == in.ApproverID {
				step = &steps[i]
				break
			}
		}
		if step == nil {
			return fmt.Errorf("global step for approver %s: %w", in.ApproverID, errs.ErrNotFound)
		}
		u.applyDecision(step, in.Decision, in.Reason)
		if err := r.Approvals.SaveStep(ctx, step); err != nil {
			return err
		}

		dto, change, err = u.refreshRollup(ctx, r, l, in.ApproverID, in.Reason, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.emit(change)
	return dto, nil
}

// DecideSpecific records a decision on one sarana/prasarana step.
func (u *Usecase) DecideSpecific(ctx context.Context, in DecideSpecificInput) (*RollupDTO, error) {
	if in.Decision != DecisionApprove && in.Decision != DecisionReject {
		return nil, errs.Validation(errs.CodeInvalidInput, "decision must be approve or reject")
	}
	var (
		dto    *RollupDTO
		change *loan.StatusChange
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, step, err := lockRequestThenStep(ctx, r, in.StepID)
		if err != nil {
			return err
		}
		if step.Type == approval.StepGlobal {
			return errs.Validation(errs.CodeInvalidInput,
				"step %s is a global step, use the global decision endpoint", in.StepID)
		}
		if step.ApproverID != in.ApproverID {
			return errs.Validation(errs.CodeInvalidInput,
				"step %s belongs to another approver", in.StepID)
		}
		if l.Status.IsTerminal() {
			return errs.Validation(errs.CodeInvalidTransition,
				"loan request is already %s", l.Status)
		}
		u.applyDecision(step, in.Decision, in.Reason)
		if err := r.Approvals.SaveStep(ctx, step); err != nil {
			return err
		}

		dto, change, err = u.refreshRollup(ctx, r, l, in.ApproverID, in.Reason, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.emit(change)
	return dto, nil
}

// Override lets a higher authority supersede a step decision regardless of
// the parent's state. The original decision trail survives; only the
// override marker plus the new status are layered on.
func (u *Usecase) Override(ctx context.Context, in OverrideInput) (*RollupDTO, error) {
	if in.Decision != DecisionApprove && in.Decision != DecisionReject {
		return nil, errs.Validation(errs.CodeInvalidInput, "decision must be approve or reject")
	}
	var (
		dto    *RollupDTO
		change *loan.StatusChange
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, step, err := lockRequestThenStep(ctx, r, in.StepID)
		if err != nil {
			return err
		}
		now := u.now()
		step.Override(in.ActorID, now)
		u.applyDecision(step, in.Decision, in.Reason)
		if err := r.Approvals.SaveStep(ctx, step); err != nil {
			return err
		}

		dto, change, err = u.refreshRollup(ctx, r, l, in.ActorID, in.Reason, step.Type == approval.StepGlobal)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.emit(change)
	return dto, nil
}

// ResetStep returns a step to pending, clearing its decision timestamps.
func (u *Usecase) ResetStep(ctx context.Context, stepID, actorID string) (*RollupDTO, error) {
	var dto *RollupDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, step, err := lockRequestThenStep(ctx, r, stepID)
		if err != nil {
			return err
		}
		if l.Status.IsTerminal() {
			return errs.Validation(errs.CodeInvalidTransition,
				"loan request is already %s", l.Status)
		}
		step.Reset()
		if err := r.Approvals.SaveStep(ctx, step); err != nil {
			return err
		}
		dto, _, err = u.refreshRollup(ctx, r, l, actorID, "", false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) ListSteps(ctx context.Context, requestID string) ([]StepDTO, error) {
	var out []StepDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByRequestID(ctx, requestID)
		if err != nil {
			return err
		}
		steps, err := r.Approvals.ListStepsByRequest(ctx, l.ID)
		if err != nil {
			return err
		}
		for i := range steps {
			out = append(out, toStepDTO(&steps[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterGlobalApprover enforces (user, level) uniqueness across active and
// inactive rows before insert; there is no DB unique constraint behind it.
func (u *Usecase) RegisterGlobalApprover(ctx context.Context, in RegisterGlobalApproverInput) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Approvals.FindGlobalApprover(ctx, in.UserID, in.ApprovalLevel); err == nil {
			return errs.Validation(errs.CodeDuplicateApprover,
				"user %s already has global approval level %d", in.UserID, in.ApprovalLevel)
		} else if !errs.IsNotFound(err) {
			return err
		}
		return r.Approvals.CreateGlobalApprover(ctx, &approval.GlobalApprover{
			UserID:        in.UserID,
			ApprovalLevel: in.ApprovalLevel,
			IsActive:      true,
		})
	})
}

func (u *Usecase) RegisterResourceApprover(ctx context.Context, in RegisterResourceApproverInput) error {
	rt := approval.StepType(in.ResourceType)
	if rt != approval.StepSarana && rt != approval.StepPrasarana {
		return errs.Validation(errs.CodeInvalidInput, "resource_type must be sarana or prasarana")
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Approvals.FindResourceApprover(ctx, rt, in.ResourceID, in.UserID, in.ApprovalLevel); err == nil {
			return errs.Validation(errs.CodeDuplicateApprover,
				"user %s already has %s approval level %d on resource %d",
				in.UserID, in.ResourceType, in.ApprovalLevel, in.ResourceID)
		} else if !errs.IsNotFound(err) {
			return err
		}
		return r.Approvals.CreateResourceApprover(ctx, &approval.ResourceApprover{
			ResourceType:  rt,
			ResourceID:    in.ResourceID,
			UserID:        in.UserID,
			ApprovalLevel: in.ApprovalLevel,
			IsActive:      true,
		})
	})
}

func (u *Usecase) applyDecision(step *approval.WorkflowStep, d Decision, notes string) {
	now := u.now()
	if d == DecisionApprove {
		step.Approve(notes, now)
	} else {
		step.Reject(notes, now)
	}
}

// refreshRollup recomputes the rollup from all steps and advances the loan
// status when the overall outcome settles. Rejection is terminal and frees
// the requester's quota slot. Runs inside the caller's transaction so the
// stored rollup is never observably stale.
func (u *Usecase) refreshRollup(ctx context.Context, r uow.Repos, l *loan.LoanRequest, actorID, reason string, globalDecision bool) (*RollupDTO, *loan.StatusChange, error) {
	now := u.now()
	steps, err := r.Approvals.ListStepsByRequest(ctx, l.ID)
	if err != nil {
		return nil, nil, err
	}
	res := approval.ComputeRollup(steps)

	rollup, err := r.Approvals.GetRollupByRequest(ctx, l.ID)
	if err != nil {
		if !errs.IsNotFound(err) {
			return nil, nil, err
		}
		rollup = &approval.StatusRollup{LoanRequestRowID: l.ID}
		if err := r.Approvals.CreateRollup(ctx, rollup); err != nil {
			return nil, nil, err
		}
	}
	rollup.Apply(res)
	if globalDecision {
		rollup.GlobalDecidedBy = &actorID
		rollup.GlobalDecidedAt = &now
		if reason != "" {
			rollup.GlobalReason = &reason
		}
	}
	if err := r.Approvals.SaveRollup(ctx, rollup); err != nil {
		return nil, nil, err
	}

	var change *loan.StatusChange
	switch {
	case res.Overall == approval.OverallApproved && l.Status == loan.StatusPending:
		old := l.Status
		l.Status = loan.StatusApproved
		l.ApprovedBy = &actorID
		l.ApprovedAt = &now
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return nil, nil, err
		}
		change = &loan.StatusChange{OldStatus: old, NewStatus: l.Status, ActorID: actorID, Request: l}

	case res.Overall == approval.OverallRejected && l.Status == loan.StatusPending:
		old := l.Status
		l.Status = loan.StatusRejected
		if reason != "" {
			l.RejectionReason = &reason
		}
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return nil, nil, err
		}
		if err := r.Quotas.Decrement(ctx, l.RequesterID); err != nil {
			return nil, nil, err
		}
		change = &loan.StatusChange{OldStatus: old, NewStatus: l.Status, ActorID: actorID, Request: l}
	}

	return &RollupDTO{
		OverallStatus:    string(res.Overall),
		GlobalStatus:     string(res.Global),
		SpecificTotal:    res.SpecificTotal,
		SpecificApproved: res.SpecificApproved,
		SpecificRejected: res.SpecificRejected,
	}, change, nil
}

func (u *Usecase) emit(change *loan.StatusChange) {
	if change == nil {
		return
	}
	u.notifier.NotifyStatusChange(*change)
	u.log.Info("loan status changed",
		zap.String("request_id", change.Request.RequestID),
		zap.String("old", string(change.OldStatus)),
		zap.String("new", string(change.NewStatus)))
}

// lockRequestThenStep acquires rows in the same order as the flows that
// start from the request (global decision, pickup, return, cancel): loan row
// first, step row second. The step is read once without a lock purely to
// resolve its parent; it is re-fetched FOR UPDATE after the loan is held, so
// two concurrent decisions on one request can never hold the rows in
// opposite order.
func lockRequestThenStep(ctx context.Context, r uow.Repos, stepID string) (*loan.LoanRequest, *approval.WorkflowStep, error) {
	ref, err := r.Approvals.GetStepByStepID(ctx, stepID)
	if err != nil {
		return nil, nil, err
	}
	l, err := r.Loans.GetByRowIDForUpdate(ctx, ref.LoanRequestRowID)
	if err != nil {
		return nil, nil, err
	}
	step, err := r.Approvals.GetStepByStepIDForUpdate(ctx, stepID)
	if err != nil {
		return nil, nil, err
	}
	return l, step, nil
}

func toStepDTO(s *approval.WorkflowStep) StepDTO {
	return StepDTO{
		StepID:        s.StepID,
		Type:          string(s.Type),
		ResourceID:    s.ResourceID,
		ApproverID:    s.ApproverID,
		ApprovalLevel: s.ApprovalLevel,
		Status:        string(s.Status),
		Notes:         s.Notes,
		ApprovedAt:    s.ApprovedAt,
		RejectedAt:    s.RejectedAt,
		OverriddenBy:  s.OverriddenBy,
		OverriddenAt:  s.OverriddenAt,
	}
}
