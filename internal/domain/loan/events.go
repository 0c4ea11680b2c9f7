package loan

// StatusChange is the record emitted on every lifecycle transition, the
// initial pending state included. Notification transport is a collaborator
// concern; the core only guarantees the record is emitted.
type StatusChange struct {
	OldStatus Status
	NewStatus Status
	ActorID   string
	Request   *LoanRequest
}

// Notifier receives status changes after the owning transaction commits.
// Implementations must not block the caller for long.
type Notifier interface {
	NotifyStatusChange(change StatusChange)
}

// NopNotifier discards all changes. Used in tests.
type NopNotifier struct{}

func (NopNotifier) NotifyStatusChange(StatusChange) {}
