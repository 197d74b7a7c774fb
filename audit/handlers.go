package audit

import (
	"staffing/common"

	"github.com/sirupsen/logrus"
)

// Handler observes committed entries, it returns nil when the entry is not its concern.
type Handler func(e *AuditLogEntry) *HandleResult

type HandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var Handlers []Handler

var PublishFunc = publish

// Publish hands committed entries to every registered handler. Handler failures are only logged,
// the database row stays the durable record.
func Publish(entries ...*AuditLogEntry) []HandleResult {
	return PublishFunc(entries...)
}

func publish(entries ...*AuditLogEntry) []HandleResult {
	results := []HandleResult{}
	for _, e := range entries {
		for _, handler := range Handlers {
			r := handler(e)
			if r == nil {
				continue
			}
			results = append(results, *r)

			fields := logrus.Fields{"auditId": e.ID, "action": e.Action, "handler": r.HandlerIdentifier}
			if r.Success {
				common.Log.WithFields(fields).Debug("audit entry handled")
			} else {
				common.Log.WithFields(fields).Warn("audit handler failed: ", r.Message)
			}
		}
	}
	return results
}
