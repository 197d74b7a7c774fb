package timesheet

import (
	"errors"
	"staffing/bizerror"
	"staffing/domain"

	"github.com/shopspring/decimal"
)

// DayValidation is the outcome of checking a candidate entry against the entries of its day.
type DayValidation struct {
	Valid     bool            `json:"valid"`
	Code      string          `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Remaining decimal.Decimal `json:"remaining"`
}

// CheckDay applies the per day rules in order: duplicate period, full day exclusivity, daily capacity.
// entries are every other entry of the consultant on that day, across interventions.
func CheckDay(entries []domain.Timesheet, period domain.Period, qty decimal.Decimal) error {
	total := decimal.Zero
	hasFullDay := false
	for _, e := range entries {
		if e.Period == period {
			return bizerror.ErrDuplicatePeriod
		}
		if e.Period == domain.PeriodFullDay {
			hasFullDay = true
		}
		total = total.Add(e.Quantity)
	}
	if len(entries) > 0 && (period == domain.PeriodFullDay || hasFullDay) {
		return bizerror.ErrFullDayConflict
	}
	if total.Add(qty).GreaterThan(domain.FullDay) {
		return bizerror.ErrDailyCapacityExceeded
	}
	return nil
}

func dayTotal(entries []domain.Timesheet) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total
}

func newDayValidation(entries []domain.Timesheet, err error) *DayValidation {
	total := dayTotal(entries)
	v := &DayValidation{Valid: err == nil, Total: total, Remaining: decimal.Max(domain.FullDay.Sub(total), decimal.Zero)}
	var be *bizerror.Error
	if errors.As(err, &be) {
		v.Code, v.Message = be.Code, be.Message
	}
	return v
}
