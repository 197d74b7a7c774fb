package margin

import (
	"bytes"
	"staffing/domain"
	"strings"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProjectMargin(t *testing.T) {
	RegisterTestingT(t)

	p := &domain.Project{ID: 1, Name: "p1", CJN: d("400"), CJR: decimal.NullDecimal{Decimal: d("300"), Valid: true}}
	rows := []validatedRow{
		{ProjectID: 1, InterventionID: 10, Quantity: d("1"), BillingRate: d("600")},
		{ProjectID: 1, InterventionID: 10, Quantity: d("1"), BillingRate: d("600")},
		{ProjectID: 1, InterventionID: 11, Quantity: d("0.5"), BillingRate: d("600")},
	}
	u := usageByProject(rows)[1]

	t.Run("should price cost on cjn", func(t *testing.T) {
		m := projectMargin(p, u, false)
		Expect(m.ValidatedDays.Equal(d("2.5"))).To(BeTrue())
		Expect(m.Revenue.Equal(d("1500"))).To(BeTrue())
		Expect(m.Cost.Equal(d("1000"))).To(BeTrue())
		Expect(m.Margin.Equal(d("500"))).To(BeTrue())
		Expect(m.MarginPct.Equal(d("33.33"))).To(BeTrue())
		Expect(m.CostType).To(Equal(CostCJN))
	})

	t.Run("should price cost on cjr", func(t *testing.T) {
		m := projectMargin(p, u, true)
		Expect(m.Cost.Equal(d("750"))).To(BeTrue())
		Expect(m.MarginPct.Equal(d("50"))).To(BeTrue())
		Expect(m.CostType).To(Equal(CostCJR))
		Expect(m.CJRFallback).To(BeFalse())
	})

	t.Run("should fall back to cjn without cjr", func(t *testing.T) {
		m := projectMargin(&domain.Project{ID: 2, CJN: d("400")}, u, true)
		Expect(m.Cost.Equal(d("1000"))).To(BeTrue())
		Expect(m.CJRFallback).To(BeTrue())
	})

	t.Run("should not divide by a zero revenue", func(t *testing.T) {
		m := projectMargin(p, emptyUsage(), false)
		Expect(m.MarginPct.IsZero()).To(BeTrue())
		Expect(m.Revenue.IsZero()).To(BeTrue())
	})

	t.Run("should group usage per intervention", func(t *testing.T) {
		byIntervention := usageByIntervention(rows)
		Expect(byIntervention[types.ID(10)].days.Equal(d("2"))).To(BeTrue())
		Expect(byIntervention[types.ID(11)].revenue.Equal(d("300"))).To(BeTrue())
	})
}

func TestComparison(t *testing.T) {
	RegisterTestingT(t)

	p1 := &domain.Project{ID: 1, Name: "p1", CJN: d("400"), CJR: decimal.NullDecimal{Decimal: d("300"), Valid: true}}
	p2 := &domain.Project{ID: 2, Name: "p2", CJN: d("500")}

	c1 := compareMargin(p1, usage{days: d("2.5"), revenue: d("1500")})
	c2 := compareMargin(p2, usage{days: d("1"), revenue: d("450")})

	t.Run("should compute economie per project", func(t *testing.T) {
		Expect(c1.Economie.Equal(d("250"))).To(BeTrue())
		Expect(c1.MarginCJRPct.Equal(d("50"))).To(BeTrue())
		Expect(c2.Economie.IsZero()).To(BeTrue())
		Expect(c2.CJRFallback).To(BeTrue())
		Expect(c2.MarginCJN.Equal(d("-50"))).To(BeTrue())
	})

	t.Run("should total the projects", func(t *testing.T) {
		totals := totalsOf([]MarginComparison{c1, c2})
		Expect(totals.Revenue.Equal(d("1950"))).To(BeTrue())
		Expect(totals.CostCJN.Equal(d("1500"))).To(BeTrue())
		Expect(totals.CostCJR.Equal(d("1250"))).To(BeTrue())
		Expect(totals.Economie.Equal(d("250"))).To(BeTrue())
		Expect(totals.MarginCJNPct.Equal(d("23.08"))).To(BeTrue())
		Expect(totals.MarginCJRPct.Equal(d("35.9"))).To(BeTrue())
	})

	t.Run("should export as csv", func(t *testing.T) {
		report := &ComparisonReport{Projects: []MarginComparison{c1, c2}}
		report.Totals = totalsOf(report.Projects)
		var buf bytes.Buffer
		Expect(WriteComparisonCSV(&buf, report)).To(BeNil())
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(len(lines)).To(Equal(4))
		Expect(lines[0]).To(HavePrefix("project_id,project,client,validated_days"))
		Expect(lines[1]).To(Equal("1,p1,,2.5,1500.00,1000.00,750.00,500.00,750.00,250.00,33.33,50.00,false"))
		Expect(lines[3]).To(Equal(",TOTAL,,,1950.00,1500.00,1250.00,450.00,700.00,250.00,23.08,35.90,"))
	})
}
