package assistant

import (
	"staffing/authority"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/consultant"
	"staffing/domain/dashboard"
	"staffing/domain/project"
	"staffing/domain/timesheet"
	"staffing/domain/validation"
	"staffing/session"

	"github.com/shopspring/decimal"
)

type TimesheetSummary struct {
	Period    string             `json:"period"`
	From      common.Date        `json:"from"`
	To        common.Date        `json:"to"`
	TotalDays decimal.Decimal    `json:"totalDays"`
	Entries   []domain.Timesheet `json:"entries"`
}

type ProjectList struct {
	Projects []domain.ProjectView `json:"projects"`
	Count    int                  `json:"count"`
}

type ConsultantList struct {
	Consultants []domain.ConsultantDetail `json:"consultants"`
	Count       int                       `json:"count"`
}

type PendingList struct {
	Pending []domain.PendingTimesheet `json:"pending"`
	Count   int                       `json:"count"`
}

type HelpInfo struct {
	Message  string   `json:"message"`
	Commands []string `json:"commands"`
	Examples []string `json:"examples"`
}

type Guidance struct {
	Message string `json:"message"`
}

// ActionFailure reports a refused delegated call back to the user.
type ActionFailure struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// execute runs the read matching the intent with the caller's own session, so every
// permission of the delegated manager applies unchanged.
func execute(intent Intent, sec *session.Session) (interface{}, error) {
	switch intent.Type {
	case IntentTimesheetQuery:
		return queryTimesheets(intent.Params.Period, sec)
	case IntentProjectQuery:
		return queryProjects(sec)
	case IntentConsultantQuery:
		return queryConsultants(sec)
	case IntentValidationQuery:
		pending, err := validation.QueryPendingFunc(sec)
		if err != nil {
			return nil, err
		}
		return &PendingList{Pending: pending, Count: len(pending)}, nil
	case IntentDashboardQuery:
		return dashboard.MyDashboardFunc(sec)
	case IntentTimesheetCreate:
		return &Guidance{Message: "Utilisez la saisie des temps pour enregistrer vos jours, une entrée par demi-journée ou journée."}, nil
	case IntentTimesheetSubmit:
		return &Guidance{Message: "Soumettez vos brouillons depuis la liste de vos temps, chaque entrée passe alors en attente de validation."}, nil
	case IntentValidationAction:
		return &Guidance{Message: "Les validations se font depuis la liste des temps en attente, un rejet demande un commentaire."}, nil
	case IntentHelp:
		return helpInfo(sec.Role), nil
	default:
		return &Guidance{Message: `Je n'ai pas compris votre demande. Tapez "aide" pour voir les commandes disponibles.`}, nil
	}
}

func queryTimesheets(period string, sec *session.Session) (*TimesheetSummary, error) {
	today := common.Today()
	summary := &TimesheetSummary{Period: period, TotalDays: decimal.Zero, Entries: []domain.Timesheet{}}
	q := &domain.TimesheetQuery{}
	if period == PeriodMonth {
		first, last, err := common.ParseMonth(today.Month())
		if err != nil {
			return nil, err
		}
		summary.From, summary.To = first, last
		q.Month = today.Month()
	} else {
		summary.From, summary.To = today.Week()
	}

	me, err := consultant.DetailMeFunc(sec)
	if err != nil {
		if sec.Role == authority.Consultant {
			return nil, err
		}
		// managers without a consultant profile have no time of their own
		return summary, nil
	}
	q.ConsultantID = me.ID

	records, err := timesheet.QueryTimesheetsFunc(q, sec)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Date.Before(summary.From) || r.Date.After(summary.To) {
			continue
		}
		summary.Entries = append(summary.Entries, r)
		summary.TotalDays = summary.TotalDays.Add(r.Quantity)
	}
	return summary, nil
}

func queryProjects(sec *session.Session) (*ProjectList, error) {
	var projects []domain.ProjectView
	var err error
	if sec.Role == authority.ProjectOwner {
		projects, err = project.QueryOwnedProjectsFunc(sec)
	} else {
		projects, err = project.QueryActiveProjectsFunc(sec)
	}
	if err != nil {
		return nil, err
	}
	return &ProjectList{Projects: projects, Count: len(projects)}, nil
}

func queryConsultants(sec *session.Session) (*ConsultantList, error) {
	all, err := consultant.QueryConsultantsFunc(sec)
	if err != nil {
		return nil, err
	}
	available := []domain.ConsultantDetail{}
	for _, c := range all {
		if c.Available {
			available = append(available, c)
		}
	}
	return &ConsultantList{Consultants: available, Count: len(available)}, nil
}

func helpInfo(role authority.Role) *HelpInfo {
	commands := []string{"Combien de jours cette semaine ?", "Mes projets", "Mes statistiques"}
	if role != authority.Consultant {
		commands = append(commands, "Timesheets en attente", "Mes consultants")
	}
	return &HelpInfo{
		Message:  "Voici ce que je peux faire pour vous :",
		Commands: commands,
		Examples: []string{"Combien de jours ce mois ?", "Mes projets actifs", "Mes consultants disponibles"},
	}
}
