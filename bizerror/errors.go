package bizerror

import (
	"errors"
	"net/http"
	"staffing/common"

	"github.com/jinzhu/gorm"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindForbidden
	KindInvalidState
	KindUnauthenticated
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidState:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a business rejection. Two errors match under errors.Is when their codes are equal,
// so an instance carrying Data still matches the sentinel it was derived from.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Data    interface{}

	parent *Error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Sub creates a more specific error which still matches e under errors.Is.
func (e *Error) Sub(code, message string) *Error {
	return &Error{Kind: e.Kind, Code: code, Message: message, parent: e}
}

func (e *Error) WithData(data interface{}) *Error {
	c := *e
	c.Data = data
	return &c
}

func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t != nil && t.Code == e.Code
}

func (e *Error) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Error) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: e.Kind.Status(), Code: e.Code, Message: e.Message, Data: e.Data}
}

var (
	ErrInvalidPeriod          = New(KindValidation, "intervention.invalid_period", "end date must not be before start date")
	ErrInvalidAllocation      = New(KindValidation, "intervention.invalid_allocation", "allocation must be between 0 and 100")
	ErrAllocationConflict     = New(KindConflict, "intervention.allocation_conflict", "allocation exceeds 100% on overlapping interventions")
	ErrHasDependentTimesheets = New(KindConflict, "intervention.has_dependent_timesheets", "intervention is referenced by timesheets")
	ErrAlreadyTerminated      = New(KindInvalidState, "intervention.already_terminated", "intervention is already terminated")
	ErrInterventionTerminated = New(KindInvalidState, "intervention.terminated", "intervention is terminated")

	ErrPeriodQuantityMismatch = New(KindValidation, "timesheet.period_quantity_mismatch", "quantity must be 1.0 for a full day and 0.5 for a half day")
	ErrInterventionMismatch   = New(KindValidation, "timesheet.intervention_mismatch", "intervention does not belong to the consultant")
	ErrOutsideIntervention    = New(KindValidation, "timesheet.outside_intervention", "date is outside of the intervention period")
	ErrDuplicatePeriod        = New(KindConflict, "timesheet.duplicate_period", "period already recorded for this day")
	ErrDailyCapacityExceeded  = New(KindConflict, "timesheet.daily_capacity_exceeded", "daily total would exceed 1.0 day")
	ErrFullDayConflict        = New(KindConflict, "timesheet.full_day_conflict", "full day entry cannot be combined with another entry")
	ErrInvalidStateTransition = New(KindInvalidState, "timesheet.invalid_state_transition", "invalid state transition")
	ErrInvalidStateForEdit    = ErrInvalidStateTransition.Sub("timesheet.invalid_state_for_edit", "only draft timesheets can be changed")

	ErrInvalidState    = ErrInvalidStateTransition.Sub("validation.invalid_state", "timesheet is not in the expected state")
	ErrCommentRequired = New(KindValidation, "validation.comment_required", "a comment is required to reject a timesheet")

	ErrNotFound               = New(KindNotFound, "common.record_not_found", "record not found")
	ErrConcurrentModification = New(KindConflict, "common.concurrent_modification", "concurrent modification")
	ErrDuplicated             = New(KindConflict, "common.duplicated", "record already exists")

	ErrForbidden       = New(KindForbidden, "security.forbidden", "access forbidden")
	ErrRoleForbidden   = ErrForbidden.Sub("security.role_forbidden", "role is not allowed to access real cost data")
	ErrUnauthenticated = New(KindUnauthenticated, "security.unauthenticated", "unauthenticated")
	ErrTokenInvalid    = ErrUnauthenticated.Sub("security.token_invalid", "token invalid")
	ErrTokenExpired    = ErrUnauthenticated.Sub("security.token_expired", "token expired")
	ErrInvalidPassword = ErrUnauthenticated.Sub("security.invalid_password", "invalid email or password")
)

// OrNotFound translates a missing record into ErrNotFound and keeps other errors unchanged.
func OrNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
