package loan

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"sarpras-backend/internal/domain/approval"
	"sarpras-backend/internal/domain/errs"
	"sarpras-backend/internal/domain/loan"
	"sarpras-backend/internal/domain/marking"
	"sarpras-backend/internal/domain/quota"
	"sarpras-backend/internal/domain/schedule"
	"sarpras-backend/internal/domain/uow"
	"sarpras-backend/internal/testutil/approvalmock"
	"sarpras-backend/internal/testutil/loanmock"
	"sarpras-backend/internal/testutil/markingmock"
	"sarpras-backend/internal/testutil/quotamock"
	"sarpras-backend/internal/testutil/uowmock"
)

var (
	requester = strings.Repeat("a", 32)
	validator = strings.Repeat("b", 32)
	fixedNow  = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
)

type captureNotifier struct {
	changes []loan.StatusChange
}

func (n *captureNotifier) NotifyStatusChange(c loan.StatusChange) {
	n.changes = append(n.changes, c)
}

func newUsecase(r uow.Repos, n loan.Notifier) *Usecase {
	return NewUsecase(uowmock.New(r), n, zap.NewNop(), 3).
		WithClock(func() time.Time { return fixedNow })
}

func roomInput() CreateInput {
	roomID := uint64(7)
	return CreateInput{
		RequesterID: requester,
		EventName:   "Seminar Nasional",
		RoomID:      &roomID,
		StartsAt:    fixedNow.Add(24 * time.Hour),
		EndsAt:      fixedNow.Add(26 * time.Hour),
		Items:       []ItemInput{{EquipmentID: 11, RequestedQty: 2}},
	}
}

func TestCreate_QuotaExhausted(t *testing.T) {
	created := false
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			CreateFn: func(ctx context.Context, l *loan.LoanRequest) error {
				created = true
				return nil
			},
		},
		Approvals: &approvalmock.Repo{},
		Markings:  &markingmock.Repo{},
		Quotas: &quotamock.Repo{
			GetOrCreateFn: func(ctx context.Context, userID string, defaultMax int) (*quota.UserQuota, error) {
				return &quota.UserQuota{UserID: userID, MaxBorrowings: 3, ActiveBorrowings: 3}, nil
			},
		},
	}
	uc := newUsecase(repos, &captureNotifier{})

	_, err := uc.Create(context.Background(), roomInput())
	ve, ok := errs.AsValidation(err)
	if !ok || ve.Code != errs.CodeQuotaExhausted {
		t.Fatalf("err = %v, want quota_exhausted", err)
	}
	if created {
		t.Fatal("no request row may be created when quota is exhausted")
	}
}

func TestCreate_ScheduleConflictWithLoan(t *testing.T) {
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			FindOverlappingFn: func(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, exclude uint64) (*loan.LoanRequest, error) {
				return &loan.LoanRequest{RequestID: strings.Repeat("c", 32)}, nil
			},
		},
		Approvals: &approvalmock.Repo{},
		Markings:  &markingmock.Repo{},
		Quotas:    &quotamock.Repo{},
	}
	uc := newUsecase(repos, &captureNotifier{})

	_, err := uc.Create(context.Background(), roomInput())
	ve, ok := errs.AsValidation(err)
	if !ok || ve.Code != errs.CodeScheduleConflict {
		t.Fatalf("err = %v, want schedule_conflict", err)
	}
}

func TestCreate_ScheduleConflictWithLiveMarking(t *testing.T) {
	repos := uow.Repos{
		Loans:     &loanmock.Repo{},
		Approvals: &approvalmock.Repo{},
		Markings: &markingmock.Repo{
			FindOverlappingFn: func(ctx context.Context, ref schedule.ResourceRef, w schedule.Window, now time.Time, exclude uint64) (*marking.Marking, error) {
				return &marking.Marking{MarkingID: strings.Repeat("d", 32)}, nil
			},
		},
		Quotas: &quotamock.Repo{},
	}
	uc := newUsecase(repos, &captureNotifier{})

	_, err := uc.Create(context.Background(), roomInput())
	ve, ok := errs.AsValidation(err)
	if !ok || ve.Code != errs.CodeScheduleConflict {
		t.Fatalf("err = %v, want schedule_conflict", err)
	}
}

func TestCreate_SeedsWorkflowAndIncrementsQuota(t *testing.T) {
	var (
		steps       []approval.WorkflowStep
		rollup      *approval.StatusRollup
		incremented bool
	)
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			CreateFn: func(ctx context.Context, l *loan.LoanRequest) error {
				l.ID = 42
				for i := range l.Items {
					l.Items[i].ID = uint64(100 + i)
				}
				return nil
			},
		},
		Approvals: &approvalmock.Repo{
			ListActiveGlobalApproversFn: func(ctx context.Context) ([]approval.GlobalApprover, error) {
				return []approval.GlobalApprover{{UserID: strings.Repeat("e", 32), ApprovalLevel: 1}}, nil
			},
			ListActiveResourceApproversFn: func(ctx context.Context, rt approval.StepType, resourceID uint64) ([]approval.ResourceApprover, error) {
				return []approval.ResourceApprover{{ResourceType: rt, ResourceID: resourceID, UserID: strings.Repeat("f", 32), ApprovalLevel: 1}}, nil
			},
			CreateStepFn: func(ctx context.Context, s *approval.WorkflowStep) error {
				steps = append(steps, *s)
				return nil
			},
			CreateRollupFn: func(ctx context.Context, r *approval.StatusRollup) error {
				rollup = r
				return nil
			},
		},
		Markings: &markingmock.Repo{},
		Quotas: &quotamock.Repo{
			IncrementFn: func(ctx context.Context, userID string) error {
				incremented = true
				return nil
			},
		},
	}
	notifier := &captureNotifier{}
	uc := newUsecase(repos, notifier)

	dto, err := uc.Create(context.Background(), roomInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != string(loan.StatusPending) {
		t.Fatalf("status = %s, want pending", dto.Status)
	}
	if len(dto.RequestID) != 32 || dto.ConflictGroup == "" {
		t.Fatalf("ids missing: %+v", dto)
	}

	// one global + one prasarana (room 7) + one sarana (equipment 11)
	if len(steps) != 3 {
		t.Fatalf("seeded %d steps, want 3", len(steps))
	}
	byType := map[approval.StepType]int{}
	for _, s := range steps {
		byType[s.Type]++
		if s.Status != approval.StepPending || s.LoanRequestRowID != 42 {
			t.Fatalf("bad seeded step: %+v", s)
		}
	}
	if byType[approval.StepGlobal] != 1 || byType[approval.StepPrasarana] != 1 || byType[approval.StepSarana] != 1 {
		t.Fatalf("step partition: %v", byType)
	}

	if rollup == nil || rollup.OverallStatus != approval.OverallPending {
		t.Fatalf("rollup: %+v", rollup)
	}
	if !incremented {
		t.Fatal("quota must be incremented at creation")
	}
	if len(notifier.changes) != 1 || notifier.changes[0].NewStatus != loan.StatusPending {
		t.Fatalf("notifications: %+v", notifier.changes)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	uc := newUsecase(uow.Repos{
		Loans: &loanmock.Repo{}, Approvals: &approvalmock.Repo{},
		Markings: &markingmock.Repo{}, Quotas: &quotamock.Repo{},
	}, &captureNotifier{})

	in := roomInput()
	in.EndsAt = in.StartsAt
	if _, err := uc.Create(context.Background(), in); err == nil {
		t.Fatal("empty window must be rejected")
	}

	in = roomInput()
	loc := "Lapangan Timur"
	in.CustomLocation = &loc
	if _, err := uc.Create(context.Background(), in); err == nil {
		t.Fatal("room_id and custom_location together must be rejected")
	}

	in = roomInput()
	in.RequesterID = "short"
	if _, err := uc.Create(context.Background(), in); err == nil {
		t.Fatal("malformed requester_id must be rejected")
	}
}

func approvedRequest() *loan.LoanRequest {
	roomID := uint64(7)
	return &loan.LoanRequest{
		ID:          42,
		RequestID:   strings.Repeat("9", 32),
		RequesterID: requester,
		RoomID:      &roomID,
		Status:      loan.StatusApproved,
		Items: []loan.LoanItem{
			{ID: 100, ItemID: strings.Repeat("1", 32), EquipmentID: 11, RequestedQty: 2},
		},
	}
}

func TestValidatePickup_RequiresOverallApproved(t *testing.T) {
	l := approvedRequest()
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByRequestIDForUpdateFn: func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
				return l, nil
			},
		},
		Approvals: &approvalmock.Repo{
			GetRollupByRequestFn: func(ctx context.Context, rowID uint64) (*approval.StatusRollup, error) {
				return &approval.StatusRollup{LoanRequestRowID: rowID, OverallStatus: approval.OverallPartiallyApproved}, nil
			},
		},
		Markings: &markingmock.Repo{},
		Quotas:   &quotamock.Repo{},
	}
	uc := newUsecase(repos, &captureNotifier{})

	err := uc.ValidatePickup(context.Background(), PickupInput{RequestID: l.RequestID, ValidatorID: validator})
	ve, ok := errs.AsValidation(err)
	if !ok || ve.Code != errs.CodeInvalidTransition {
		t.Fatalf("err = %v, want invalid_state_transition", err)
	}
}

func TestValidatePickup_UnitAlreadyAllocated(t *testing.T) {
	l := approvedRequest()
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByRequestIDForUpdateFn: func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
				return l, nil
			},
			FindActiveUnitByAssetFn: func(ctx context.Context, assetUnitID uint64) (*loan.LoanItemUnit, error) {
				return &loan.LoanItemUnit{LoanItemRowID: 999, AssetUnitID: assetUnitID, Status: loan.UnitActive}, nil
			},
		},
		Approvals: &approvalmock.Repo{
			GetRollupByRequestFn: func(ctx context.Context, rowID uint64) (*approval.StatusRollup, error) {
				return &approval.StatusRollup{LoanRequestRowID: rowID, OverallStatus: approval.OverallApproved}, nil
			},
		},
		Markings: &markingmock.Repo{},
		Quotas:   &quotamock.Repo{},
	}
	uc := newUsecase(repos, &captureNotifier{})

	err := uc.ValidatePickup(context.Background(), PickupInput{
		RequestID:   l.RequestID,
		ValidatorID: validator,
		Assignments: []UnitAssignment{{ItemID: l.Items[0].ItemID, AssetUnitIDs: []uint64{501}}},
	})
	ve, ok := errs.AsValidation(err)
	if !ok || ve.Code != errs.CodeUnitUnavailable {
		t.Fatalf("err = %v, want unit_unavailable", err)
	}
}

func TestValidatePickup_AllocatesUnitsAndTransitions(t *testing.T) {
	l := approvedRequest()
	var units []loan.LoanItemUnit
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByRequestIDForUpdateFn: func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
				return l, nil
			},
			CreateUnitFn: func(ctx context.Context, u *loan.LoanItemUnit) error {
				units = append(units, *u)
				return nil
			},
		},
		Approvals: &approvalmock.Repo{
			GetRollupByRequestFn: func(ctx context.Context, rowID uint64) (*approval.StatusRollup, error) {
				return &approval.StatusRollup{LoanRequestRowID: rowID, OverallStatus: approval.OverallApproved}, nil
			},
		},
		Markings: &markingmock.Repo{},
		Quotas:   &quotamock.Repo{},
	}
	notifier := &captureNotifier{}
	uc := newUsecase(repos, notifier)

	err := uc.ValidatePickup(context.Background(), PickupInput{
		RequestID:   l.RequestID,
		ValidatorID: validator,
		Assignments: []UnitAssignment{{ItemID: l.Items[0].ItemID, AssetUnitIDs: []uint64{501, 502}}},
	})
	if err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if l.Status != loan.StatusPickedUp || l.PickupValidatedBy == nil || l.PickupValidatedAt == nil {
		t.Fatalf("request after pickup: %+v", l)
	}
	if len(units) != 2 {
		t.Fatalf("allocated %d units, want 2", len(units))
	}
	for _, u := range units {
		if u.Status != loan.UnitActive || u.LoanItemRowID != 100 || u.AssignedBy != validator {
			t.Fatalf("bad unit: %+v", u)
		}
	}
	if len(notifier.changes) != 1 || notifier.changes[0].NewStatus != loan.StatusPickedUp {
		t.Fatalf("notifications: %+v", notifier.changes)
	}
}

func TestValidateReturn_ReleasesUnitsAndFreesQuota(t *testing.T) {
	l := approvedRequest()
	l.Status = loan.StatusPickedUp
	active := []loan.LoanItemUnit{
		{ID: 1, LoanItemRowID: 100, AssetUnitID: 501, Status: loan.UnitActive},
		{ID: 2, LoanItemRowID: 100, AssetUnitID: 502, Status: loan.UnitActive},
	}
	var released []loan.LoanItemUnit
	decremented := false
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByRequestIDForUpdateFn: func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
				return l, nil
			},
			ListActiveUnitsByRequestFn: func(ctx context.Context, rowID uint64) ([]loan.LoanItemUnit, error) {
				return active, nil
			},
			SaveUnitFn: func(ctx context.Context, u *loan.LoanItemUnit) error {
				released = append(released, *u)
				return nil
			},
		},
		Approvals: &approvalmock.Repo{},
		Markings:  &markingmock.Repo{},
		Quotas: &quotamock.Repo{
			DecrementFn: func(ctx context.Context, userID string) error {
				decremented = true
				return nil
			},
		},
	}
	uc := newUsecase(repos, &captureNotifier{})

	if err := uc.ValidateReturn(context.Background(), ReturnInput{RequestID: l.RequestID, ValidatorID: validator}); err != nil {
		t.Fatalf("return: %v", err)
	}
	if l.Status != loan.StatusReturned {
		t.Fatalf("status = %s, want returned", l.Status)
	}
	if len(released) != 2 {
		t.Fatalf("released %d units, want 2", len(released))
	}
	for _, u := range released {
		if u.Status != loan.UnitReleased || u.ReleasedBy == nil || u.ReleasedAt == nil {
			t.Fatalf("bad released unit: %+v", u)
		}
	}
	if !decremented {
		t.Fatal("quota must be freed on return")
	}
}

func TestValidateReturn_FromApprovedIsIllegal(t *testing.T) {
	l := approvedRequest() // approved, not picked up
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByRequestIDForUpdateFn: func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
				return l, nil
			},
		},
		Approvals: &approvalmock.Repo{}, Markings: &markingmock.Repo{}, Quotas: &quotamock.Repo{},
	}
	uc := newUsecase(repos, &captureNotifier{})

	err := uc.ValidateReturn(context.Background(), ReturnInput{RequestID: l.RequestID, ValidatorID: validator})
	ve, ok := errs.AsValidation(err)
	if !ok || ve.Code != errs.CodeInvalidTransition {
		t.Fatalf("err = %v, want invalid_state_transition", err)
	}
}

func TestCancel_FromPickedUpReleasesUnits(t *testing.T) {
	l := approvedRequest()
	l.Status = loan.StatusPickedUp
	var released int
	decremented := false
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByRequestIDForUpdateFn: func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
				return l, nil
			},
			ListActiveUnitsByRequestFn: func(ctx context.Context, rowID uint64) ([]loan.LoanItemUnit, error) {
				return []loan.LoanItemUnit{{ID: 1, LoanItemRowID: 100, AssetUnitID: 501, Status: loan.UnitActive}}, nil
			},
			SaveUnitFn: func(ctx context.Context, u *loan.LoanItemUnit) error {
				released++
				return nil
			},
		},
		Approvals: &approvalmock.Repo{},
		Markings:  &markingmock.Repo{},
		Quotas: &quotamock.Repo{
			DecrementFn: func(ctx context.Context, userID string) error {
				decremented = true
				return nil
			},
		},
	}
	uc := newUsecase(repos, &captureNotifier{})

	if err := uc.Cancel(context.Background(), l.RequestID, requester, "acara batal"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if l.Status != loan.StatusCancelled || l.CancelReason == nil {
		t.Fatalf("request after cancel: %+v", l)
	}
	if released != 1 || !decremented {
		t.Fatalf("released=%d decremented=%t", released, decremented)
	}
}

func TestCancel_FromTerminalIsIllegal(t *testing.T) {
	l := approvedRequest()
	l.Status = loan.StatusReturned
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByRequestIDForUpdateFn: func(ctx context.Context, requestID string) (*loan.LoanRequest, error) {
				return l, nil
			},
		},
		Approvals: &approvalmock.Repo{}, Markings: &markingmock.Repo{}, Quotas: &quotamock.Repo{},
	}
	uc := newUsecase(repos, &captureNotifier{})

	err := uc.Cancel(context.Background(), l.RequestID, requester, "")
	ve, ok := errs.AsValidation(err)
	if !ok || ve.Code != errs.CodeInvalidTransition {
		t.Fatalf("err = %v, want invalid_state_transition", err)
	}
}
