package dashboard

import (
	"staffing/authority"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/margin"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

// Utilization is the allocation of a consultant on a day and the days validated in that month.
type Utilization struct {
	ConsultantID  types.ID        `json:"consultantId"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Available     bool            `json:"available"`
	Date          common.Date     `json:"date"`
	Allocation    int             `json:"allocation"`
	Free          int             `json:"free"`
	ValidatedDays decimal.Decimal `json:"validatedDays"`
}

// AllocationPeak is the busiest day of a consultant whose active interventions exceed the maximum.
type AllocationPeak struct {
	ConsultantID  types.ID    `json:"consultantId"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Date          common.Date `json:"date"`
	Allocation    int         `json:"allocation"`
	Interventions []types.ID  `json:"interventions"`
}

type CapacityReport struct {
	Date                 common.Date      `json:"date"`
	AvailableConsultants int              `json:"availableConsultants"`
	AverageUtilization   int              `json:"averageUtilization"`
	ActiveProjects       int              `json:"activeProjects"`
	Consultants          []Utilization    `json:"consultants"`
	Conflicts            []AllocationPeak `json:"conflicts"`
}

type Assignment struct {
	InterventionID types.ID     `json:"interventionId"`
	ProjectID      types.ID     `json:"projectId"`
	ProjectName    string       `json:"projectName"`
	Client         string       `json:"client"`
	Allocation     int          `json:"allocation"`
	StartDate      common.Date  `json:"startDate"`
	EndDate        *common.Date `json:"endDate"`
}

type WeekEntry struct {
	ID          types.ID               `json:"id"`
	Date        common.Date            `json:"date"`
	Quantity    decimal.Decimal        `json:"quantity"`
	Period      domain.Period          `json:"period"`
	Status      domain.TimesheetStatus `json:"status"`
	ProjectName string                 `json:"projectName"`
	Client      string                 `json:"client"`
}

type ConsultantDashboard struct {
	ConsultantID  types.ID        `json:"consultantId"`
	Month         string          `json:"month"`
	ValidatedDays decimal.Decimal `json:"validatedDays"`
	ProjectCount  int             `json:"projectCount"`
	Utilization   int             `json:"utilization"`
	Projects      []Assignment    `json:"projects"`
	WeekFrom      common.Date     `json:"weekFrom"`
	WeekTo        common.Date     `json:"weekTo"`
	Week          []WeekEntry     `json:"week"`
}

// ProjectOwnerDashboard lists the normalized margins of the active projects owned by the caller.
type ProjectOwnerDashboard struct {
	PendingCount int                    `json:"pendingCount"`
	Projects     []margin.ProjectMargin `json:"projects"`
}

type AdminDashboard struct {
	CapacityReport
	Revenue decimal.Decimal `json:"revenue"`
}

type DirecteurDashboard struct {
	AdminDashboard
	Margins *margin.ComparisonReport `json:"margins"`
}

// Dashboard is the dashboard of the caller's role.
type Dashboard struct {
	Role authority.Role `json:"role"`
	Data interface{}    `json:"data"`
}
