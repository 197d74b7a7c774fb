package assistant

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type intentRule struct {
	intent     IntentType
	pattern    *regexp.Regexp
	confidence float64
}

// rules are evaluated in order, the first match wins.
var rules = []intentRule{
	{IntentTimesheetCreate, regexp.MustCompile(`(sais(i|ir)|log|record).*\d+([.,]\d+)?\s*(jours?|j|days?)\b`), 0.9},
	{IntentTimesheetSubmit, regexp.MustCompile(`(soumet|submit|envoy).*(temps|timesheet|saisie)`), 0.85},
	{IntentTimesheetQuery, regexp.MustCompile(`combien.*(jour|heure|temps)|total.*(semaine|mois|week|month)|mes.*(temps|heure)|how many days`), 0.9},
	{IntentValidationQuery, regexp.MustCompile(`(timesheet|temps).*attente|à\s*valid|pending`), 0.85},
	{IntentValidationAction, regexp.MustCompile(`(valid|accept|approve|reject|rejet).*timesheet`), 0.8},
	{IntentProjectQuery, regexp.MustCompile(`\b(projet|mission|project)s?\b`), 0.8},
	{IntentConsultantQuery, regexp.MustCompile(`consultant|disponibl|capacit|available`), 0.75},
	{IntentDashboardQuery, regexp.MustCompile(`dashboard|statistique|stats|kpi|metric`), 0.8},
	{IntentHelp, regexp.MustCompile(`aide|help|\?$`), 1.0},
}

var (
	daysPattern    = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:jours?|j|days?)\b`)
	projectPattern = regexp.MustCompile(`(?i)(?:projet|project)\s+(\w+)`)
	monthPattern   = regexp.MustCompile(`mois|month`)
	rejectPattern  = regexp.MustCompile(`reject|rejet`)
)

// DetectIntent classifies a chat message with keyword rules in french and english.
func DetectIntent(message string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		if !r.pattern.MatchString(lower) {
			continue
		}
		intent := Intent{Type: r.intent, Confidence: r.confidence}
		switch r.intent {
		case IntentTimesheetCreate:
			intent.Params = IntentParams{Days: extractDays(lower), Project: extractProject(message)}
		case IntentTimesheetQuery:
			intent.Params = IntentParams{Period: extractPeriod(lower)}
		case IntentValidationAction:
			intent.Params = IntentParams{Decision: extractDecision(lower)}
		case IntentProjectQuery:
			intent.Params = IntentParams{Project: extractProject(message)}
		}
		return intent
	}
	return Intent{Type: IntentUnknown}
}

func extractDays(lower string) *decimal.Decimal {
	m := daysPattern.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	days, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		return nil
	}
	return &days
}

func extractProject(message string) string {
	m := projectPattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

func extractPeriod(lower string) string {
	if monthPattern.MatchString(lower) {
		return PeriodMonth
	}
	return PeriodWeek
}

func extractDecision(lower string) string {
	if rejectPattern.MatchString(lower) {
		return "rejected"
	}
	return "validated"
}
