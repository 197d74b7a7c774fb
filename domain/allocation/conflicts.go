package allocation

import (
	"staffing/common"
	"staffing/domain"

	"github.com/fundwit/go-commons/types"
)

// Conflicts returns every active intervention overlapping period when their summed allocation
// plus pct would exceed the maximum. The intervention excludeID is ignored.
func Conflicts(existing []domain.Intervention, period common.DateRange, pct int, excludeID types.ID) []domain.AllocationConflict {
	var overlapping []domain.AllocationConflict
	sum := 0
	for i := range existing {
		it := &existing[i]
		if it.ID == excludeID || !it.Active() || !it.Period().Overlaps(period) {
			continue
		}
		sum += it.Allocation
		overlapping = append(overlapping, domain.AllocationConflict{InterventionID: it.ID, ProjectID: it.ProjectID,
			StartDate: it.StartDate, EndDate: it.EndDate, Allocation: it.Allocation})
	}
	if sum+pct <= domain.MaxAllocation {
		return []domain.AllocationConflict{}
	}
	return overlapping
}

// AllocatedOn sums the allocation of the active interventions covering day.
func AllocatedOn(existing []domain.Intervention, day common.Date) int {
	sum := 0
	for i := range existing {
		if existing[i].Active() && existing[i].Period().Covers(day) {
			sum += existing[i].Allocation
		}
	}
	return sum
}
