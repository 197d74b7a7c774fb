package dashboard

import (
	"staffing/authority"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/consultant"
	"staffing/domain/margin"
	"staffing/domain/project"
	"staffing/domain/validation"
	"staffing/persistence"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var (
	MyDashboardFunc           = MyDashboard
	ConsultantStatsFunc       = ConsultantStats
	ProjectOwnerStatsFunc     = ProjectOwnerStats
	AdminStatsFunc            = AdminStats
	DirecteurStatsFunc        = DirecteurStats
	CapacityFunc              = Capacity
	ConsultantUtilizationFunc = ConsultantUtilization
	AllUtilizationsFunc       = AllUtilizations
)

func loadActive(db *gorm.DB, consultantIDs ...types.ID) ([]domain.Intervention, error) {
	records := []domain.Intervention{}
	query := db.Where("status = ?", domain.InterventionActive)
	if len(consultantIDs) > 0 {
		query = query.Where("consultant_id IN (?)", consultantIDs)
	}
	if err := query.Order("start_date ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

type validatedDays struct {
	ConsultantID types.ID
	Days         decimal.Decimal
}

// loadValidatedDays sums the validated days of each consultant in month.
func loadValidatedDays(db *gorm.DB, month string, consultantIDs ...types.ID) (map[types.ID]decimal.Decimal, error) {
	first, last, err := common.ParseMonth(month)
	if err != nil {
		return nil, &common.ErrBadParam{Cause: err}
	}
	query := db.Table("timesheets").Select("consultant_id, SUM(quantity) AS days").
		Where("timesheets.status = ? AND timesheets.date >= ? AND timesheets.date <= ?", domain.TimesheetValidated, first, last)
	if len(consultantIDs) > 0 {
		query = query.Where("timesheets.consultant_id IN (?)", consultantIDs)
	}
	rows := []validatedDays{}
	if err := query.Group("consultant_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]decimal.Decimal{}
	for _, r := range rows {
		result[r.ConsultantID] = r.Days
	}
	return result, nil
}

func daysOf(m map[types.ID]decimal.Decimal, id types.ID) decimal.Decimal {
	if d, found := m[id]; found {
		return d
	}
	return decimal.Zero
}

// utilizations computes the utilization of every consultant on day.
func utilizations(db *gorm.DB, consultants []domain.ConsultantDetail, day common.Date) ([]Utilization, map[types.ID][]domain.Intervention, error) {
	active, err := loadActive(db)
	if err != nil {
		return nil, nil, err
	}
	days, err := loadValidatedDays(db, day.Month())
	if err != nil {
		return nil, nil, err
	}
	byConsultant := groupByConsultant(active)
	result := make([]Utilization, 0, len(consultants))
	for i := range consultants {
		c := &consultants[i]
		result = append(result, utilizationOf(c, byConsultant[c.ID], day, daysOf(days, c.ID)))
	}
	return result, byConsultant, nil
}

// ConsultantUtilization returns the allocation of a consultant today, consultants only read their own.
func ConsultantUtilization(consultantID types.ID, sec *session.Session) (*Utilization, error) {
	detail, err := consultant.DetailConsultant(consultantID, sec)
	if err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	active, err := loadActive(db, consultantID)
	if err != nil {
		return nil, err
	}
	today := common.Today()
	days, err := loadValidatedDays(db, today.Month(), consultantID)
	if err != nil {
		return nil, err
	}
	u := utilizationOf(detail, active, today, daysOf(days, consultantID))
	return &u, nil
}

// AllUtilizations lists every consultant, the busiest first.
func AllUtilizations(sec *session.Session) ([]Utilization, error) {
	consultants, err := consultant.QueryConsultants(sec)
	if err != nil {
		return nil, err
	}
	result, _, err := utilizations(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), consultants, common.Today())
	if err != nil {
		return nil, err
	}
	sortByAllocation(result)
	return result, nil
}

// Capacity reports the utilization of the available consultants and every consultant over allocated on some day.
func Capacity(sec *session.Session) (*CapacityReport, error) {
	consultants, err := consultant.QueryConsultants(sec)
	if err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	today := common.Today()
	all, byConsultant, err := utilizations(db, consultants, today)
	if err != nil {
		return nil, err
	}

	report := &CapacityReport{Date: today, Consultants: []Utilization{}, Conflicts: []AllocationPeak{}}
	for _, u := range all {
		if u.Available {
			report.Consultants = append(report.Consultants, u)
		}
	}
	sortByAllocation(report.Consultants)
	report.AvailableConsultants = len(report.Consultants)
	report.AverageUtilization = averageOf(report.Consultants)

	for i := range consultants {
		c := &consultants[i]
		day, peak, ids := peakOf(byConsultant[c.ID])
		if peak > domain.MaxAllocation {
			report.Conflicts = append(report.Conflicts, AllocationPeak{ConsultantID: c.ID, FirstName: c.FirstName,
				LastName: c.LastName, Date: day, Allocation: peak, Interventions: ids})
		}
	}

	if err := db.Model(&domain.Project{}).Where("status = ?", domain.ProjectActive).Count(&report.ActiveProjects).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// ConsultantStats summarizes the month and the ongoing projects of the caller with its current week.
func ConsultantStats(sec *session.Session) (*ConsultantDashboard, error) {
	me, err := consultant.DetailMe(sec)
	if err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	today := common.Today()
	result := &ConsultantDashboard{ConsultantID: me.ID, Month: today.Month()}

	days, err := loadValidatedDays(db, result.Month, me.ID)
	if err != nil {
		return nil, err
	}
	result.ValidatedDays = daysOf(days, me.ID)

	active, err := loadActive(db, me.ID)
	if err != nil {
		return nil, err
	}
	projects := map[types.ID]domain.Project{}
	if len(active) > 0 {
		ids := make([]types.ID, 0, len(active))
		for _, it := range active {
			ids = append(ids, it.ProjectID)
		}
		var records []domain.Project
		if err := db.Where("id IN (?)", ids).Find(&records).Error; err != nil {
			return nil, err
		}
		for _, p := range records {
			projects[p.ID] = p
		}
	}
	result.Projects = assignmentsOf(active, projects, today)
	result.ProjectCount = len(result.Projects)
	result.Utilization = utilizationOf(me, active, today, result.ValidatedDays).Allocation

	result.WeekFrom, result.WeekTo = today.Week()
	result.Week = []WeekEntry{}
	if err := db.Table("timesheets").
		Select("timesheets.id, timesheets.date, timesheets.quantity, timesheets.period, timesheets.status, " +
			"projects.name AS project_name, projects.client AS client").
		Joins("JOIN interventions ON interventions.id = timesheets.intervention_id").
		Joins("JOIN projects ON projects.id = interventions.project_id").
		Where("timesheets.consultant_id = ? AND timesheets.date >= ? AND timesheets.date <= ?", me.ID, result.WeekFrom, result.WeekTo).
		Order("timesheets.date ASC, timesheets.id ASC").Scan(&result.Week).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ProjectOwnerStats counts the entries awaiting the caller and lists the margins of its active projects.
func ProjectOwnerStats(sec *session.Session) (*ProjectOwnerDashboard, error) {
	owned, err := project.QueryOwnedProjects(sec)
	if err != nil {
		return nil, err
	}
	pending, err := validation.QueryPending(sec)
	if err != nil {
		return nil, err
	}
	report, err := margin.AllMargins(false, sec)
	if err != nil {
		return nil, err
	}
	return &ProjectOwnerDashboard{PendingCount: len(pending), Projects: activeMargins(report.Projects, owned)}, nil
}

// AdminStats adds the revenue of every validated day to the capacity report.
func AdminStats(sec *session.Session) (*AdminDashboard, error) {
	capacity, err := Capacity(sec)
	if err != nil {
		return nil, err
	}
	report, err := margin.AllMargins(false, sec)
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{CapacityReport: *capacity, Revenue: revenueOf(report.Projects)}, nil
}

// DirecteurStats adds the normalized and real margins of every project, the read is audited.
func DirecteurStats(sec *session.Session) (*DirecteurDashboard, error) {
	if !sec.Role.CanViewRealCost() {
		return nil, bizerror.ErrRoleForbidden
	}
	admin, err := AdminStats(sec)
	if err != nil {
		return nil, err
	}
	margins, err := margin.CompareMargins(0, sec)
	if err != nil {
		return nil, err
	}
	return &DirecteurDashboard{AdminDashboard: *admin, Margins: margins}, nil
}

// MyDashboard returns the dashboard matching the caller's role.
func MyDashboard(sec *session.Session) (*Dashboard, error) {
	var data interface{}
	var err error
	switch sec.Role {
	case authority.Consultant:
		data, err = ConsultantStatsFunc(sec)
	case authority.ProjectOwner:
		data, err = ProjectOwnerStatsFunc(sec)
	case authority.Administrator:
		data, err = AdminStatsFunc(sec)
	case authority.Directeur:
		data, err = DirecteurStatsFunc(sec)
	default:
		return nil, bizerror.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: sec.Role, Data: data}, nil
}
