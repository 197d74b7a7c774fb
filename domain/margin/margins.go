package margin

import (
	"errors"
	"staffing/audit"
	"staffing/authority"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/allocation"
	"staffing/domain/consultant"
	"staffing/domain/project"
	"staffing/persistence"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const comparisonDetail = "CJN_CJR_COMPARISON"

var (
	ErrProjectRequired = &common.ErrBadParam{Cause: errors.New("project id is required")}

	ProjectMarginsFunc  = ProjectMargins
	AllMarginsFunc      = AllMargins
	CompareMarginsFunc  = CompareMargins
	ConsultantCJRFunc   = ConsultantCJR
	InterventionCJRFunc = InterventionCJR
	ExportCJRFunc       = ExportCJR
)

// checkAccess gates the normalized views to project managers and every real cost view to directeur.
// It runs before any read so a refused caller never produces an audit entry.
func checkAccess(sec *session.Session, realCost bool) error {
	if realCost && !sec.Role.CanViewRealCost() {
		return bizerror.ErrRoleForbidden
	}
	if !sec.Role.CanManageProjects() {
		return bizerror.ErrForbidden
	}
	return nil
}

type auditTarget struct {
	action       audit.Action
	resourceType string
	resourceID   string
	detail       string
}

// read runs fn in a transaction and, when target is set, appends the audit entry to that same
// transaction. Committed entries are then published to the audit handlers.
func read(sec *session.Session, target *auditTarget, fn func(tx *gorm.DB) error) error {
	var entry *audit.AuditLogEntry
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		if target == nil {
			return nil
		}
		var err error
		entry, err = audit.Record(tx, sec, target.action, target.resourceType, target.resourceID, target.detail)
		return err
	})
	if err != nil {
		return err
	}
	if entry != nil {
		audit.Publish(entry)
	}
	return nil
}

// scopedProjects returns one project or all projects, project owners only reach their own.
func scopedProjects(db *gorm.DB, projectID types.ID, sec *session.Session) ([]domain.Project, error) {
	if projectID != 0 {
		p, err := project.FindProject(db, projectID)
		if err != nil {
			return nil, err
		}
		if err := project.CheckManageable(p, sec); err != nil {
			return nil, err
		}
		return []domain.Project{*p}, nil
	}

	query := db.Model(&domain.Project{})
	if sec.Role == authority.ProjectOwner {
		query = query.Where("owner_id = ?", sec.Identity.ID)
	}
	records := []domain.Project{}
	if err := query.Order("name ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func loadValidated(db *gorm.DB, where string, args ...interface{}) ([]validatedRow, error) {
	rows := []validatedRow{}
	err := db.Table("timesheets").
		Select("interventions.project_id AS project_id, timesheets.intervention_id AS intervention_id, " +
			"timesheets.quantity AS quantity, interventions.billing_rate AS billing_rate").
		Joins("JOIN interventions ON interventions.id = timesheets.intervention_id").
		Where("timesheets.status = ?", domain.TimesheetValidated).
		Where(where, args...).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func projectIds(projects []domain.Project) []types.ID {
	ids := make([]types.ID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}

func loadProjectUsage(db *gorm.DB, projects []domain.Project) (map[types.ID]usage, error) {
	if len(projects) == 0 {
		return map[types.ID]usage{}, nil
	}
	rows, err := loadValidated(db, "interventions.project_id IN (?)", projectIds(projects))
	if err != nil {
		return nil, err
	}
	return usageByProject(rows), nil
}

func usageOf(m map[types.ID]usage, id types.ID) usage {
	if u, found := m[id]; found {
		return u
	}
	return emptyUsage()
}

// ProjectMargins computes the margin of one project, on its real cost when useRealCost is set.
func ProjectMargins(projectID types.ID, useRealCost bool, sec *session.Session) (*ProjectMargin, error) {
	if projectID == 0 {
		return nil, ErrProjectRequired
	}
	if err := checkAccess(sec, useRealCost); err != nil {
		return nil, err
	}
	var target *auditTarget
	if useRealCost {
		target = &auditTarget{action: audit.ActionViewProjectMarginCJR, resourceType: audit.ResourceProjects,
			resourceID: projectID.String()}
	}

	var result ProjectMargin
	err := read(sec, target, func(tx *gorm.DB) error {
		projects, err := scopedProjects(tx, projectID, sec)
		if err != nil {
			return err
		}
		usages, err := loadProjectUsage(tx, projects)
		if err != nil {
			return err
		}
		result = projectMargin(&projects[0], usageOf(usages, projectID), useRealCost)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AllMargins computes the margin of every reachable project ordered by name.
func AllMargins(useRealCost bool, sec *session.Session) (*MarginReport, error) {
	if err := checkAccess(sec, useRealCost); err != nil {
		return nil, err
	}
	var target *auditTarget
	if useRealCost {
		target = &auditTarget{action: audit.ActionViewAllMarginsCJR, resourceType: audit.ResourceProjects,
			resourceID: audit.AnyResource}
	}

	report := &MarginReport{Projects: []ProjectMargin{}, CostType: costType(useRealCost)}
	err := read(sec, target, func(tx *gorm.DB) error {
		projects, err := scopedProjects(tx, 0, sec)
		if err != nil {
			return err
		}
		usages, err := loadProjectUsage(tx, projects)
		if err != nil {
			return err
		}
		for i := range projects {
			report.Projects = append(report.Projects, projectMargin(&projects[i], usageOf(usages, projects[i].ID), useRealCost))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func comparison(tx *gorm.DB, projectID types.ID, sec *session.Session) (*ComparisonReport, error) {
	projects, err := scopedProjects(tx, projectID, sec)
	if err != nil {
		return nil, err
	}
	usages, err := loadProjectUsage(tx, projects)
	if err != nil {
		return nil, err
	}
	report := &ComparisonReport{Projects: []MarginComparison{}}
	for i := range projects {
		report.Projects = append(report.Projects, compareMargin(&projects[i], usageOf(usages, projects[i].ID)))
	}
	report.Totals = totalsOf(report.Projects)
	return report, nil
}

// CompareMargins puts the normalized and real margins side by side, for one project or all of them.
func CompareMargins(projectID types.ID, sec *session.Session) (*ComparisonReport, error) {
	if err := checkAccess(sec, true); err != nil {
		return nil, err
	}
	resourceID := audit.AnyResource
	if projectID != 0 {
		resourceID = projectID.String()
	}
	target := &auditTarget{action: audit.ActionViewAllMarginsCJR, resourceType: audit.ResourceProjects,
		resourceID: resourceID, detail: comparisonDetail}

	var report *ComparisonReport
	err := read(sec, target, func(tx *gorm.DB) error {
		var err error
		report, err = comparison(tx, projectID, sec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ExportCJR returns the full comparison for a file export, the export itself is audited.
func ExportCJR(sec *session.Session) (*ComparisonReport, error) {
	if err := checkAccess(sec, true); err != nil {
		return nil, err
	}
	target := &auditTarget{action: audit.ActionExportCJRData, resourceType: audit.ResourceProjects,
		resourceID: audit.AnyResource, detail: "csv"}

	var report *ComparisonReport
	err := read(sec, target, func(tx *gorm.DB) error {
		var err error
		report, err = comparison(tx, 0, sec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ConsultantCJR lists the interventions of a consultant with the real cost of their projects.
func ConsultantCJR(consultantID types.ID, sec *session.Session) (*ConsultantCost, error) {
	if err := checkAccess(sec, true); err != nil {
		return nil, err
	}
	target := &auditTarget{action: audit.ActionViewConsultantCJR, resourceType: audit.ResourceConsultants,
		resourceID: consultantID.String()}

	var result *ConsultantCost
	err := read(sec, target, func(tx *gorm.DB) error {
		c, err := consultant.FindConsultant(tx, consultantID)
		if err != nil {
			return err
		}
		var interventions []domain.Intervention
		if err := tx.Where("consultant_id = ?", consultantID).Order("start_date DESC, id DESC").
			Find(&interventions).Error; err != nil {
			return err
		}
		rows, err := loadValidated(tx, "timesheets.consultant_id = ?", consultantID)
		if err != nil {
			return err
		}
		usages := usageByIntervention(rows)

		result = &ConsultantCost{ConsultantID: c.ID, DailyRate: c.DailyRate, Interventions: []InterventionCost{}, CostType: CostCJR}
		projects := map[types.ID]*domain.Project{}
		for i := range interventions {
			it := &interventions[i]
			p, found := projects[it.ProjectID]
			if !found {
				if p, err = project.FindProject(tx, it.ProjectID); err != nil {
					return err
				}
				projects[it.ProjectID] = p
			}
			result.Interventions = append(result.Interventions, interventionCost(it, p, usageOf(usages, it.ID)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// InterventionCJR prices one intervention on the real cost of its project.
func InterventionCJR(interventionID types.ID, sec *session.Session) (*InterventionCost, error) {
	if err := checkAccess(sec, true); err != nil {
		return nil, err
	}
	target := &auditTarget{action: audit.ActionViewInterventionCJR, resourceType: audit.ResourceInterventions,
		resourceID: interventionID.String()}

	var result InterventionCost
	err := read(sec, target, func(tx *gorm.DB) error {
		it, err := allocation.FindIntervention(tx, interventionID)
		if err != nil {
			return err
		}
		p, err := project.FindProject(tx, it.ProjectID)
		if err != nil {
			return err
		}
		rows, err := loadValidated(tx, "timesheets.intervention_id = ?", interventionID)
		if err != nil {
			return err
		}
		result = interventionCost(it, p, usageOf(usageByIntervention(rows), it.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
