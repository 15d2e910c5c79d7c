package audit

import (
	"context"
	"time"

	"github.com/compozy/defaultdesk/pkg/logger"
)

// Record appends entry after the step it describes has committed. A failed
// append is logged and never undoes that step. The write outlives request
// cancellation but not timeout.
func Record(ctx context.Context, sink Sink, timeout time.Duration, entry *Entry) {
	if sink == nil || entry == nil {
		return
	}
	writeCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(writeCtx, timeout)
		defer cancel()
	}
	if err := sink.Append(writeCtx, entry); err != nil {
		logger.FromContext(ctx).Error(
			"Failed to append audit entry",
			"action", entry.Action,
			"target_type", entry.TargetType,
			"target_id", entry.TargetID,
			"error", err,
		)
	}
}
