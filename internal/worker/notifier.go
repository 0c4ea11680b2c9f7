package worker

import (
	"go.uber.org/zap"

	"sarpras-backend/internal/domain/loan"
)

// LogNotifier is the default StatusChange consumer: it records every
// transition so an external notification sender can be attached later
// without touching the core flows.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) NotifyStatusChange(c loan.StatusChange) {
	n.log.Info("loan status change",
		zap.String("request_id", c.Request.RequestID),
		zap.String("requester_id", c.Request.RequesterID),
		zap.String("old_status", string(c.OldStatus)),
		zap.String("new_status", string(c.NewStatus)),
		zap.String("actor_id", c.ActorID))
}
