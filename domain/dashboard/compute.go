package dashboard

import (
	"sort"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/allocation"
	"staffing/domain/margin"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

func groupByConsultant(interventions []domain.Intervention) map[types.ID][]domain.Intervention {
	result := map[types.ID][]domain.Intervention{}
	for _, it := range interventions {
		result[it.ConsultantID] = append(result[it.ConsultantID], it)
	}
	return result
}

func utilizationOf(c *domain.ConsultantDetail, existing []domain.Intervention, day common.Date, validated decimal.Decimal) Utilization {
	allocated := allocation.AllocatedOn(existing, day)
	free := domain.MaxAllocation - allocated
	if free < 0 {
		free = 0
	}
	return Utilization{ConsultantID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Available: c.Available,
		Date: day, Allocation: allocated, Free: free, ValidatedDays: validated}
}

// peakOf returns the busiest day of the active interventions and the interventions covering it.
// The summed allocation only grows on a start date, so only start dates are tried.
func peakOf(existing []domain.Intervention) (common.Date, int, []types.ID) {
	var day common.Date
	peak := 0
	for i := range existing {
		if !existing[i].Active() {
			continue
		}
		start := existing[i].StartDate
		if sum := allocation.AllocatedOn(existing, start); sum > peak || (sum == peak && start.Before(day)) {
			day, peak = start, sum
		}
	}
	ids := []types.ID{}
	if peak == 0 {
		return day, 0, ids
	}
	for i := range existing {
		if existing[i].Active() && existing[i].Period().Covers(day) {
			ids = append(ids, existing[i].ID)
		}
	}
	return day, peak, ids
}

// averageOf is the mean allocation rounded to the unit, 0 for an empty list.
func averageOf(us []Utilization) int {
	if len(us) == 0 {
		return 0
	}
	sum := 0
	for _, u := range us {
		sum += u.Allocation
	}
	return int(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(us)))).Round(0).IntPart())
}

// sortByAllocation orders the busiest consultants first, then by name.
func sortByAllocation(us []Utilization) {
	sort.SliceStable(us, func(i, j int) bool {
		if us[i].Allocation != us[j].Allocation {
			return us[i].Allocation > us[j].Allocation
		}
		if us[i].LastName != us[j].LastName {
			return us[i].LastName < us[j].LastName
		}
		return us[i].FirstName < us[j].FirstName
	})
}

// assignmentsOf keeps the active interventions not ended before day, ordered by project name.
func assignmentsOf(existing []domain.Intervention, projects map[types.ID]domain.Project, day common.Date) []Assignment {
	result := []Assignment{}
	for _, it := range existing {
		if !it.Active() || (it.EndDate != nil && it.EndDate.Before(day)) {
			continue
		}
		p := projects[it.ProjectID]
		result = append(result, Assignment{InterventionID: it.ID, ProjectID: it.ProjectID, ProjectName: p.Name,
			Client: p.Client, Allocation: it.Allocation, StartDate: it.StartDate, EndDate: it.EndDate})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ProjectName != result[j].ProjectName {
			return result[i].ProjectName < result[j].ProjectName
		}
		return result[i].InterventionID < result[j].InterventionID
	})
	return result
}

func revenueOf(margins []margin.ProjectMargin) decimal.Decimal {
	total := decimal.Zero
	for _, m := range margins {
		total = total.Add(m.Revenue)
	}
	return total
}

// activeMargins keeps the margins of the active projects among owned, in the order of margins.
func activeMargins(margins []margin.ProjectMargin, owned []domain.ProjectView) []margin.ProjectMargin {
	active := map[types.ID]bool{}
	for _, p := range owned {
		if p.Status == domain.ProjectActive {
			active[p.ID] = true
		}
	}
	result := []margin.ProjectMargin{}
	for _, m := range margins {
		if active[m.ProjectID] {
			result = append(result, m)
		}
	}
	return result
}
