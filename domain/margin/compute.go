package margin

import (
	"staffing/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// validatedRow is one validated timesheet priced at the locked rate of its intervention.
type validatedRow struct {
	ProjectID      types.ID
	InterventionID types.ID
	Quantity       decimal.Decimal
	BillingRate    decimal.Decimal
}

type usage struct {
	days    decimal.Decimal
	revenue decimal.Decimal
}

func (u usage) add(r validatedRow) usage {
	return usage{days: u.days.Add(r.Quantity), revenue: u.revenue.Add(r.Quantity.Mul(r.BillingRate))}
}

func emptyUsage() usage {
	return usage{days: decimal.Zero, revenue: decimal.Zero}
}

func usageByProject(rows []validatedRow) map[types.ID]usage {
	result := map[types.ID]usage{}
	for _, r := range rows {
		u, found := result[r.ProjectID]
		if !found {
			u = emptyUsage()
		}
		result[r.ProjectID] = u.add(r)
	}
	return result
}

func usageByIntervention(rows []validatedRow) map[types.ID]usage {
	result := map[types.ID]usage{}
	for _, r := range rows {
		u, found := result[r.InterventionID]
		if !found {
			u = emptyUsage()
		}
		result[r.InterventionID] = u.add(r)
	}
	return result
}

// costPerDay picks the CJR of a project when asked for, falling back to its CJN when no CJR is set.
func costPerDay(p *domain.Project, realCost bool) (decimal.Decimal, bool) {
	if !realCost {
		return p.CJN, false
	}
	if p.CJR.Valid {
		return p.CJR.Decimal, false
	}
	return p.CJN, true
}

// ratio is margin over revenue as a percentage rounded to 2 places, 0 without revenue.
func ratio(margin, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return margin.Div(revenue).Mul(hundred).Round(2)
}

func costType(realCost bool) CostType {
	if realCost {
		return CostCJR
	}
	return CostCJN
}

func projectMargin(p *domain.Project, u usage, realCost bool) ProjectMargin {
	rate, fallback := costPerDay(p, realCost)
	revenue := u.revenue.Round(2)
	cost := u.days.Mul(rate).Round(2)
	m := revenue.Sub(cost)
	return ProjectMargin{
		ProjectID: p.ID, ProjectName: p.Name, Client: p.Client, SoldAmount: p.SoldAmount,
		ValidatedDays: u.days, Revenue: revenue, Cost: cost, Margin: m, MarginPct: ratio(m, revenue),
		CostType: costType(realCost), CJRFallback: fallback,
	}
}

func compareMargin(p *domain.Project, u usage) MarginComparison {
	normalized := projectMargin(p, u, false)
	actual := projectMargin(p, u, true)
	return MarginComparison{
		ProjectID: p.ID, ProjectName: p.Name, Client: p.Client, SoldAmount: p.SoldAmount,
		ValidatedDays: u.days, Revenue: normalized.Revenue,
		CostCJN: normalized.Cost, CostCJR: actual.Cost,
		MarginCJN: normalized.Margin, MarginCJR: actual.Margin,
		Economie: normalized.Cost.Sub(actual.Cost), CJRFallback: actual.CJRFallback,
		MarginCJNPct: normalized.MarginPct, MarginCJRPct: actual.MarginPct,
	}
}

func totalsOf(projects []MarginComparison) ComparisonTotals {
	t := ComparisonTotals{Revenue: decimal.Zero, CostCJN: decimal.Zero, CostCJR: decimal.Zero,
		MarginCJN: decimal.Zero, MarginCJR: decimal.Zero, Economie: decimal.Zero}
	for _, p := range projects {
		t.Revenue = t.Revenue.Add(p.Revenue)
		t.CostCJN = t.CostCJN.Add(p.CostCJN)
		t.CostCJR = t.CostCJR.Add(p.CostCJR)
		t.MarginCJN = t.MarginCJN.Add(p.MarginCJN)
		t.MarginCJR = t.MarginCJR.Add(p.MarginCJR)
		t.Economie = t.Economie.Add(p.Economie)
	}
	t.MarginCJNPct = ratio(t.MarginCJN, t.Revenue)
	t.MarginCJRPct = ratio(t.MarginCJR, t.Revenue)
	return t
}

func interventionCost(i *domain.Intervention, p *domain.Project, u usage) InterventionCost {
	rate, fallback := costPerDay(p, true)
	revenue := u.revenue.Round(2)
	cost := u.days.Mul(rate).Round(2)
	return InterventionCost{
		InterventionID: i.ID, ConsultantID: i.ConsultantID, ProjectID: p.ID, ProjectName: p.Name, Client: p.Client,
		StartDate: i.StartDate, EndDate: i.EndDate, Allocation: i.Allocation, Status: i.Status,
		BillingRate: i.BillingRate, CJN: p.CJN, CJR: p.CJR,
		ValidatedDays: u.days, Revenue: revenue, CostCJR: cost, MarginCJR: revenue.Sub(cost), CJRFallback: fallback,
	}
}
