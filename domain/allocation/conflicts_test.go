package allocation_test

import (
	"staffing/common"
	"staffing/domain"
	"staffing/domain/allocation"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func interventionOf(id uint64, start, end string, pct int, status domain.InterventionStatus) domain.Intervention {
	i := domain.Intervention{ID: types.ID(id), StartDate: common.MustParseDate(start), Allocation: pct, Status: status}
	if end != "" {
		e := common.MustParseDate(end)
		i.EndDate = &e
	}
	return i
}

func dateRange(start, end string) common.DateRange {
	r := common.DateRange{Start: common.MustParseDate(start)}
	if end != "" {
		e := common.MustParseDate(end)
		r.End = &e
	}
	return r
}

func TestConflicts(t *testing.T) {
	RegisterTestingT(t)

	existing := []domain.Intervention{
		interventionOf(1, "2024-01-01", "2024-01-31", 60, domain.InterventionActive),
		interventionOf(2, "2024-03-01", "", 30, domain.InterventionActive),
		interventionOf(3, "2024-01-01", "2024-12-31", 90, domain.InterventionTerminated),
	}

	t.Run("should report overlapping interventions when sum exceeds 100", func(t *testing.T) {
		conflicts := allocation.Conflicts(existing, dateRange("2024-01-15", "2024-02-15"), 50, 0)
		Expect(len(conflicts)).To(Equal(1))
		Expect(conflicts[0].InterventionID).To(Equal(types.ID(1)))
		Expect(conflicts[0].Allocation).To(Equal(60))
	})

	t.Run("exactly 100 is legal", func(t *testing.T) {
		Expect(allocation.Conflicts(existing, dateRange("2024-01-15", "2024-02-15"), 40, 0)).To(BeEmpty())
	})

	t.Run("closed bounds touch on the same day", func(t *testing.T) {
		Expect(allocation.Conflicts(existing, dateRange("2024-01-31", "2024-01-31"), 50, 0)).To(HaveLen(1))
		Expect(allocation.Conflicts(existing, dateRange("2024-02-01", "2024-02-29"), 100, 0)).To(BeEmpty())
	})

	t.Run("open ended periods overlap everything after their start", func(t *testing.T) {
		Expect(allocation.Conflicts(existing, dateRange("2030-01-01", ""), 80, 0)).To(HaveLen(1))
		Expect(allocation.Conflicts(existing, dateRange("2023-01-01", ""), 20, 0)).To(HaveLen(2))
		Expect(allocation.Conflicts(existing, dateRange("2023-01-01", ""), 10, 0)).To(BeEmpty())
	})

	t.Run("terminated and excluded interventions do not count", func(t *testing.T) {
		Expect(allocation.Conflicts(existing, dateRange("2024-01-10", "2024-01-20"), 70, 1)).To(BeEmpty())
		Expect(allocation.Conflicts(existing, dateRange("2024-06-01", "2024-06-30"), 70, 0)).To(BeEmpty())
	})

	t.Run("allocated on sums covering interventions", func(t *testing.T) {
		Expect(allocation.AllocatedOn(existing, common.MustParseDate("2024-01-10"))).To(Equal(60))
		Expect(allocation.AllocatedOn(existing, common.MustParseDate("2024-02-10"))).To(Equal(0))
		Expect(allocation.AllocatedOn(existing, common.MustParseDate("2025-02-10"))).To(Equal(30))
	})
}
