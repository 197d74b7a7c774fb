package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type Decision string

const (
	DecisionValidated Decision = "validated"
	DecisionRejected  Decision = "rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionValidated || d == DecisionRejected
}

// Validation is an append only record of an approval decision.
type Validation struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	TimesheetID types.ID `json:"timesheetId" gorm:"index:validation_timesheet_idx"`
	ValidatorID types.ID `json:"validatorId"`
	Decision    Decision `json:"decision" sql:"type:VARCHAR(16)"`
	Comment     string   `json:"comment" sql:"type:TEXT"`

	CreateTime time.Time `json:"createTime"`
}

type ValidationDecision struct {
	Decision Decision `json:"decision" binding:"required,oneof=validated rejected"`
	Comment  string   `json:"comment" binding:"lte=2000"`
}

type BulkValidation struct {
	TimesheetIDs []types.ID `json:"timesheetIds" binding:"required,min=1,max=500"`
	ValidationDecision
}

type BulkFailure struct {
	TimesheetID types.ID `json:"timesheetId"`
	Code        string   `json:"code"`
	Error       string   `json:"error"`
}

// BulkResult reports each decision of a bulk validation independently.
type BulkResult struct {
	Succeeded []types.ID    `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

type PendingTimesheet struct {
	Timesheet
	ProjectID   types.ID `json:"projectId"`
	ProjectName string   `json:"projectName"`
}

type ValidationStatsQuery struct {
	ProjectID    types.ID `form:"projectId"`
	ConsultantID types.ID `form:"consultantId"`
	Month        string   `form:"month"`
}

type ValidationStats struct {
	Draft         int             `json:"draft"`
	Submitted     int             `json:"submitted"`
	Validated     int             `json:"validated"`
	Rejected      int             `json:"rejected"`
	ValidatedDays decimal.Decimal `json:"validatedDays"`
}
