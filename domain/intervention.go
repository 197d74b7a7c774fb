package domain

import (
	"staffing/common"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type InterventionStatus string

const (
	InterventionActive     InterventionStatus = "active"
	InterventionTerminated InterventionStatus = "terminee"
)

const MaxAllocation = 100

// Intervention allocates a consultant to a project. BillingRate is locked at creation.
type Intervention struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	ConsultantID types.ID `json:"consultantId" gorm:"index:intervention_consultant_idx"`
	ProjectID    types.ID `json:"projectId" gorm:"index:intervention_project_idx"`

	StartDate common.Date  `json:"startDate" sql:"type:CHAR(10)"`
	EndDate   *common.Date `json:"endDate" sql:"type:CHAR(10)"`

	BillingRate decimal.Decimal    `json:"billingRate" sql:"type:DECIMAL(12,2)"`
	Allocation  int                `json:"allocation"`
	Status      InterventionStatus `json:"status" sql:"type:VARCHAR(16)"`

	CreateTime time.Time `json:"createTime"`
}

func (i *Intervention) Period() common.DateRange {
	return common.DateRange{Start: i.StartDate, End: i.EndDate}
}

func (i *Intervention) Active() bool {
	return i.Status == InterventionActive
}

type InterventionCreation struct {
	ConsultantID types.ID        `json:"consultantId" binding:"required"`
	ProjectID    types.ID        `json:"projectId" binding:"required"`
	StartDate    common.Date     `json:"startDate"`
	EndDate      *common.Date    `json:"endDate"`
	BillingRate  decimal.Decimal `json:"billingRate"`
	Allocation   int             `json:"allocation"`
}

type AllocationUpdating struct {
	Allocation *int `json:"allocation" binding:"required"`
}

type InterventionQuery struct {
	ConsultantID types.ID `form:"consultantId"`
	ProjectID    types.ID `form:"projectId"`
	ActiveOnly   bool     `form:"activeOnly"`
}

// AllocationConflict describes an active intervention overlapping a requested allocation.
type AllocationConflict struct {
	InterventionID types.ID     `json:"interventionId"`
	ProjectID      types.ID     `json:"projectId"`
	StartDate      common.Date  `json:"startDate"`
	EndDate        *common.Date `json:"endDate"`
	Allocation     int          `json:"allocation"`
}

type AllocationStatus struct {
	ConsultantID types.ID    `json:"consultantId"`
	Date         common.Date `json:"date"`
	Current      int         `json:"current"`
	Available    int         `json:"available"`
}
