package domain

import (
	"staffing/domain/state"
)

const (
	ActionSubmit   = "submit"
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionResubmit = "resubmit"
)

var (
	stateDraft     = state.State{Name: string(TimesheetDraft), Editable: true}
	stateSubmitted = state.State{Name: string(TimesheetSubmitted)}
	stateValidated = state.State{Name: string(TimesheetValidated)}
	stateRejected  = state.State{Name: string(TimesheetRejected)}
)

// TimesheetStateMachine: draft -> submitted -> validated | rejected, rejected -> submitted.
var TimesheetStateMachine = state.NewStateMachine(
	[]state.State{stateDraft, stateSubmitted, stateValidated, stateRejected},
	[]state.Transition{
		{Name: ActionSubmit, From: stateDraft, To: stateSubmitted},
		{Name: ActionApprove, From: stateSubmitted, To: stateValidated},
		{Name: ActionReject, From: stateSubmitted, To: stateRejected},
		{Name: ActionResubmit, From: stateRejected, To: stateSubmitted},
	})

// NextStatus returns the status reached by action from the current status.
func NextStatus(from TimesheetStatus, action string) (TimesheetStatus, bool) {
	t, ok := TimesheetStateMachine.Transit(string(from), action)
	if !ok {
		return "", false
	}
	return TimesheetStatus(t.To.Name), true
}

// Editable reports whether the author may still change or delete a timesheet in status s.
func Editable(s TimesheetStatus) bool {
	return TimesheetStateMachine.Editable(string(s))
}

func DecisionAction(d Decision) string {
	if d == DecisionRejected {
		return ActionReject
	}
	return ActionApprove
}
