package margin

import (
	"encoding/csv"
	"io"
)

var exportHeader = []string{"project_id", "project", "client", "validated_days", "revenue",
	"cost_cjn", "cost_cjr", "margin_cjn", "margin_cjr", "economie", "margin_cjn_pct", "margin_cjr_pct", "cjr_fallback"}

// WriteComparisonCSV writes one line per project followed by a totals line.
func WriteComparisonCSV(w io.Writer, report *ComparisonReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, p := range report.Projects {
		fallback := "false"
		if p.CJRFallback {
			fallback = "true"
		}
		if err := writer.Write([]string{p.ProjectID.String(), p.ProjectName, p.Client, p.ValidatedDays.String(),
			p.Revenue.StringFixed(2), p.CostCJN.StringFixed(2), p.CostCJR.StringFixed(2),
			p.MarginCJN.StringFixed(2), p.MarginCJR.StringFixed(2), p.Economie.StringFixed(2),
			p.MarginCJNPct.StringFixed(2), p.MarginCJRPct.StringFixed(2), fallback}); err != nil {
			return err
		}
	}
	t := report.Totals
	if err := writer.Write([]string{"", "TOTAL", "", "", t.Revenue.StringFixed(2),
		t.CostCJN.StringFixed(2), t.CostCJR.StringFixed(2), t.MarginCJN.StringFixed(2), t.MarginCJR.StringFixed(2),
		t.Economie.StringFixed(2), t.MarginCJNPct.StringFixed(2), t.MarginCJRPct.StringFixed(2), ""}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
