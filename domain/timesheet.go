package domain

import (
	"staffing/common"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodFullDay   Period = "full_day"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodMorning, PeriodAfternoon, PeriodFullDay:
		return true
	}
	return false
}

var (
	HalfDay = decimal.NewFromFloat(0.5)
	FullDay = decimal.NewFromInt(1)
)

// MatchesQuantity reports whether qty is the only quantity allowed for the period.
func (p Period) MatchesQuantity(qty decimal.Decimal) bool {
	switch p {
	case PeriodFullDay:
		return qty.Equal(FullDay)
	case PeriodMorning, PeriodAfternoon:
		return qty.Equal(HalfDay)
	}
	return false
}

type TimesheetStatus string

const (
	TimesheetDraft     TimesheetStatus = "draft"
	TimesheetSubmitted TimesheetStatus = "submitted"
	TimesheetValidated TimesheetStatus = "validated"
	TimesheetRejected  TimesheetStatus = "rejected"
)

type Timesheet struct {
	ID             types.ID `json:"id" gorm:"primary_key"`
	ConsultantID   types.ID `json:"consultantId" gorm:"index:timesheet_consultant_date_idx"`
	InterventionID types.ID `json:"interventionId" gorm:"index:timesheet_intervention_idx"`

	Date     common.Date     `json:"date" sql:"type:CHAR(10)" gorm:"index:timesheet_consultant_date_idx"`
	Quantity decimal.Decimal `json:"quantity" sql:"type:DECIMAL(3,1)"`
	Period   Period          `json:"period" sql:"type:VARCHAR(16)"`

	Status  TimesheetStatus `json:"status" sql:"type:VARCHAR(16)"`
	Comment string          `json:"comment" sql:"type:TEXT"`

	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

type TimesheetCreation struct {
	ConsultantID   types.ID        `json:"consultantId"`
	InterventionID types.ID        `json:"interventionId" binding:"required"`
	Date           common.Date     `json:"date"`
	Quantity       decimal.Decimal `json:"quantity"`
	Period         Period          `json:"period" binding:"required"`
	Comment        string          `json:"comment" binding:"lte=2000"`
}

type TimesheetUpdating struct {
	Date     *common.Date     `json:"date"`
	Quantity *decimal.Decimal `json:"quantity"`
	Period   *Period          `json:"period"`
	Comment  *string          `json:"comment" binding:"omitempty,lte=2000"`
}

type TimesheetQuery struct {
	ConsultantID types.ID        `form:"consultantId"`
	ProjectID    types.ID        `form:"projectId"`
	Month        string          `form:"month"`
	Status       TimesheetStatus `form:"status"`
}

type MonthlySummary struct {
	ConsultantID  types.ID                `json:"consultantId"`
	Month         string                  `json:"month"`
	TotalDays     decimal.Decimal         `json:"totalDays"`
	Entries       int                     `json:"entries"`
	CountByStatus map[TimesheetStatus]int `json:"countByStatus"`
}

type DailyEntries struct {
	ConsultantID types.ID        `json:"consultantId"`
	Date         common.Date     `json:"date"`
	Total        decimal.Decimal `json:"total"`
	Remaining    decimal.Decimal `json:"remaining"`
	Entries      []Timesheet     `json:"entries"`
}
