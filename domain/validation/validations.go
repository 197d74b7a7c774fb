package validation

import (
	"errors"
	"staffing/authority"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/allocation"
	"staffing/domain/consultant"
	"staffing/domain/project"
	"staffing/domain/timesheet"
	"staffing/idgen"
	"staffing/persistence"
	"staffing/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	validationIdWorker = idgen.NewWorker()

	ErrUnknownDecision = &common.ErrBadParam{Cause: errors.New("decision must be one of validated, rejected")}

	ValidateFunc     = Validate
	ValidateBulkFunc = ValidateBulk
	ResubmitFunc     = Resubmit
	QueryPendingFunc = QueryPending
	QueryHistoryFunc = QueryHistory
	QueryStatsFunc   = QueryStats
)

// Validate records a decision on a submitted timesheet and moves it to validated or rejected.
func Validate(id types.ID, d *domain.ValidationDecision, sec *session.Session) (*domain.Validation, error) {
	if !d.Decision.Valid() {
		return nil, ErrUnknownDecision
	}
	var record *domain.Validation
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		ts, err := timesheet.FindTimesheet(tx, id)
		if err != nil {
			return err
		}
		if ts.Status != domain.TimesheetSubmitted {
			return bizerror.ErrInvalidState
		}
		if !sec.Role.CanManageProjects() {
			return bizerror.ErrForbidden
		}
		if sec.Role == authority.ProjectOwner {
			it, err := allocation.FindIntervention(tx, ts.InterventionID)
			if err != nil {
				return err
			}
			p, err := project.FindProject(tx, it.ProjectID)
			if err != nil {
				return err
			}
			if err := project.CheckManageable(p, sec); err != nil {
				return err
			}
		}
		comment := strings.TrimSpace(d.Comment)
		if d.Decision == domain.DecisionRejected && comment == "" {
			return bizerror.ErrCommentRequired
		}

		record = &domain.Validation{ID: idgen.NextID(validationIdWorker), TimesheetID: ts.ID, ValidatorID: sec.Identity.ID,
			Decision: d.Decision, Comment: comment, CreateTime: time.Now()}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return timesheet.Transit(tx, ts, domain.DecisionAction(d.Decision), bizerror.ErrInvalidState)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ValidateBulk applies the decision to each timesheet on its own, failures never abort the batch.
func ValidateBulk(b *domain.BulkValidation, sec *session.Session) *domain.BulkResult {
	result := &domain.BulkResult{Succeeded: []types.ID{}, Failed: []domain.BulkFailure{}}
	for _, id := range b.TimesheetIDs {
		if _, err := ValidateFunc(id, &b.ValidationDecision, sec); err != nil {
			_, body := bizerror.Translate(err)
			result.Failed = append(result.Failed, domain.BulkFailure{TimesheetID: id, Code: body.Code, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	common.Log.WithFields(logrus.Fields{"validatorId": sec.Identity.ID, "decision": b.Decision,
		"succeeded": len(result.Succeeded), "failed": len(result.Failed)}).Info("bulk validation done")
	return result
}

// Resubmit sends a rejected timesheet back for approval, only its consultant may do it.
func Resubmit(id types.ID, sec *session.Session) (*domain.Timesheet, error) {
	var record *domain.Timesheet
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		ts, err := timesheet.FindTimesheet(tx, id)
		if err != nil {
			return err
		}
		own, err := consultant.OwnProfile(tx, sec)
		if err != nil {
			return err
		}
		if own.ID != ts.ConsultantID {
			return bizerror.ErrForbidden
		}
		if err := timesheet.Transit(tx, ts, domain.ActionResubmit, bizerror.ErrInvalidState); err != nil {
			return err
		}
		record = ts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// QueryPending lists submitted timesheets awaiting a decision, project owners only see their projects.
func QueryPending(sec *session.Session) ([]domain.PendingTimesheet, error) {
	if !sec.Role.CanManageProjects() {
		return nil, bizerror.ErrForbidden
	}
	query := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Table("timesheets").
		Select("timesheets.*, interventions.project_id AS project_id, projects.name AS project_name").
		Joins("JOIN interventions ON interventions.id = timesheets.intervention_id").
		Joins("JOIN projects ON projects.id = interventions.project_id").
		Where("timesheets.status = ?", domain.TimesheetSubmitted)
	if !sec.Role.BypassesOwnership() {
		query = query.Where("projects.owner_id = ?", sec.Identity.ID)
	}
	records := []domain.PendingTimesheet{}
	if err := query.Order("timesheets.date ASC, timesheets.id ASC").Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// QueryHistory returns the decisions of a timesheet, newest first.
func QueryHistory(timesheetID types.ID, sec *session.Session) ([]domain.Validation, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	ts, err := timesheet.FindTimesheet(db, timesheetID)
	if err != nil {
		return nil, err
	}
	if err := consultant.CheckReadable(db, ts.ConsultantID, sec); err != nil {
		return nil, err
	}
	records := []domain.Validation{}
	if err := db.Where("timesheet_id = ?", timesheetID).Order("create_time DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// QueryStats counts timesheets per status and sums the validated days.
func QueryStats(q *domain.ValidationStatsQuery, sec *session.Session) (*domain.ValidationStats, error) {
	records, err := timesheet.QueryTimesheets(&domain.TimesheetQuery{ConsultantID: q.ConsultantID, ProjectID: q.ProjectID, Month: q.Month}, sec)
	if err != nil {
		return nil, err
	}
	stats := &domain.ValidationStats{ValidatedDays: decimal.Zero}
	for _, r := range records {
		switch r.Status {
		case domain.TimesheetDraft:
			stats.Draft++
		case domain.TimesheetSubmitted:
			stats.Submitted++
		case domain.TimesheetValidated:
			stats.Validated++
			stats.ValidatedDays = stats.ValidatedDays.Add(r.Quantity)
		case domain.TimesheetRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}
