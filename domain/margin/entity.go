package margin

import (
	"staffing/common"
	"staffing/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type CostType string

const (
	CostCJN CostType = "CJN"
	CostCJR CostType = "CJR"
)

type ProjectMargin struct {
	ProjectID     types.ID            `json:"projectId"`
	ProjectName   string              `json:"projectName"`
	Client        string              `json:"client"`
	SoldAmount    decimal.NullDecimal `json:"soldAmount"`
	ValidatedDays decimal.Decimal     `json:"validatedDays"`
	Revenue       decimal.Decimal     `json:"revenue"`
	Cost          decimal.Decimal     `json:"cost"`
	Margin        decimal.Decimal     `json:"margin"`
	MarginPct     decimal.Decimal     `json:"marginPct"`
	CostType      CostType            `json:"costType"`

	// CJRFallback is set when a real cost view had to use the normalized cost of a project without CJR.
	CJRFallback bool `json:"cjrFallback,omitempty"`
}

type MarginReport struct {
	Projects []ProjectMargin `json:"projects"`
	CostType CostType        `json:"costType"`
}

type MarginComparison struct {
	ProjectID     types.ID            `json:"projectId"`
	ProjectName   string              `json:"projectName"`
	Client        string              `json:"client"`
	SoldAmount    decimal.NullDecimal `json:"soldAmount"`
	ValidatedDays decimal.Decimal     `json:"validatedDays"`
	Revenue       decimal.Decimal     `json:"revenue"`
	CostCJN       decimal.Decimal     `json:"costCjn"`
	CostCJR       decimal.Decimal     `json:"costCjr"`
	MarginCJN     decimal.Decimal     `json:"marginCjn"`
	MarginCJR     decimal.Decimal     `json:"marginCjr"`
	Economie      decimal.Decimal     `json:"economie"`
	MarginCJNPct  decimal.Decimal     `json:"marginCjnPct"`
	MarginCJRPct  decimal.Decimal     `json:"marginCjrPct"`
	CJRFallback   bool                `json:"cjrFallback,omitempty"`
}

type ComparisonTotals struct {
	Revenue      decimal.Decimal `json:"revenue"`
	CostCJN      decimal.Decimal `json:"costCjn"`
	CostCJR      decimal.Decimal `json:"costCjr"`
	MarginCJN    decimal.Decimal `json:"marginCjn"`
	MarginCJR    decimal.Decimal `json:"marginCjr"`
	Economie     decimal.Decimal `json:"economie"`
	MarginCJNPct decimal.Decimal `json:"marginCjnPct"`
	MarginCJRPct decimal.Decimal `json:"marginCjrPct"`
}

type ComparisonReport struct {
	Projects []MarginComparison `json:"projects"`
	Totals   ComparisonTotals   `json:"totals"`
}

type InterventionCost struct {
	InterventionID types.ID                  `json:"interventionId"`
	ConsultantID   types.ID                  `json:"consultantId"`
	ProjectID      types.ID                  `json:"projectId"`
	ProjectName    string                    `json:"projectName"`
	Client         string                    `json:"client"`
	StartDate      common.Date               `json:"startDate"`
	EndDate        *common.Date              `json:"endDate"`
	Allocation     int                       `json:"allocation"`
	Status         domain.InterventionStatus `json:"status"`
	BillingRate    decimal.Decimal           `json:"billingRate"`
	CJN            decimal.Decimal           `json:"cjn"`
	CJR            decimal.NullDecimal       `json:"cjr"`
	ValidatedDays  decimal.Decimal           `json:"validatedDays"`
	Revenue        decimal.Decimal           `json:"revenue"`
	CostCJR        decimal.Decimal           `json:"costCjr"`
	MarginCJR      decimal.Decimal           `json:"marginCjr"`
	CJRFallback    bool                      `json:"cjrFallback,omitempty"`
}

type ConsultantCost struct {
	ConsultantID  types.ID           `json:"consultantId"`
	DailyRate     decimal.Decimal    `json:"dailyRate"`
	Interventions []InterventionCost `json:"interventions"`
	CostType      CostType           `json:"costType"`
}
