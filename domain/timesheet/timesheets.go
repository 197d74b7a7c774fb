package timesheet

import (
	"errors"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/allocation"
	"staffing/domain/consultant"
	"staffing/domain/ledger"
	"staffing/domain/project"
	"staffing/idgen"
	"staffing/persistence"
	"staffing/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	timesheetIdWorker = idgen.NewWorker()

	ErrDateRequired  = &common.ErrBadParam{Cause: errors.New("date is required")}
	ErrInvalidPeriod = &common.ErrBadParam{Cause: errors.New("period must be one of morning, afternoon, full_day")}

	ValidateDayEntryFunc = ValidateDayEntry
	CreateTimesheetFunc  = CreateTimesheet
	UpdateTimesheetFunc  = UpdateTimesheet
	SubmitTimesheetFunc  = SubmitTimesheet
	DeleteTimesheetFunc  = DeleteTimesheet
	DetailTimesheetFunc  = DetailTimesheet
	QueryTimesheetsFunc  = QueryTimesheets
	MonthlySummaryFunc   = MonthlySummary
	DailyEntriesFunc     = DailyEntries
)

type DayEntryCheck struct {
	ConsultantID   types.ID        `json:"consultantId" binding:"required"`
	InterventionID types.ID        `json:"interventionId"`
	Date           common.Date     `json:"date"`
	Period         domain.Period   `json:"period" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	ExcludeID      types.ID        `json:"excludeId"`
}

func validateEntry(date common.Date, period domain.Period, qty decimal.Decimal) error {
	if date.IsZero() {
		return ErrDateRequired
	}
	if !period.Valid() {
		return ErrInvalidPeriod
	}
	if !period.MatchesQuantity(qty) {
		return bizerror.ErrPeriodQuantityMismatch
	}
	return nil
}

// entriesOfDay loads the entries of a consultant on date, across all interventions.
func entriesOfDay(db *gorm.DB, consultantID types.ID, date common.Date, excludeID types.ID) ([]domain.Timesheet, error) {
	entries := []domain.Timesheet{}
	query := db.Where("consultant_id = ? AND date = ?", consultantID, date)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ValidateDayEntry reports whether an entry could be recorded, without recording it.
func ValidateDayEntry(q *DayEntryCheck, sec *session.Session) (*DayValidation, error) {
	if err := validateEntry(q.Date, q.Period, q.Quantity); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if err := consultant.CheckReadable(db, q.ConsultantID, sec); err != nil {
		return nil, err
	}
	if q.InterventionID != 0 {
		if _, err := interventionFor(db, q.InterventionID, q.ConsultantID, q.Date); err != nil {
			return nil, err
		}
	}
	entries, err := entriesOfDay(db, q.ConsultantID, q.Date, q.ExcludeID)
	if err != nil {
		return nil, err
	}
	return newDayValidation(entries, CheckDay(entries, q.Period, q.Quantity)), nil
}

// interventionFor loads an intervention and checks it can carry an entry of the consultant on date.
func interventionFor(db *gorm.DB, interventionID, consultantID types.ID, date common.Date) (*domain.Intervention, error) {
	it, err := allocation.FindIntervention(db, interventionID)
	if err != nil {
		return nil, err
	}
	if it.ConsultantID != consultantID {
		return nil, bizerror.ErrInterventionMismatch
	}
	if !it.Active() {
		return nil, bizerror.ErrInterventionTerminated
	}
	if !it.Period().Covers(date) {
		return nil, bizerror.ErrOutsideIntervention
	}
	return it, nil
}

// resolveAuthor returns the consultant an entry is recorded for.
func resolveAuthor(db *gorm.DB, requested types.ID, sec *session.Session) (types.ID, error) {
	if sec.Role.CanManageProjects() {
		if requested == 0 {
			return 0, &common.ErrBadParam{Cause: errors.New("consultant is required")}
		}
		return requested, nil
	}
	own, err := consultant.OwnProfile(db, sec)
	if err != nil {
		return 0, err
	}
	if requested != 0 && requested != own.ID {
		return 0, bizerror.ErrForbidden
	}
	return own.ID, nil
}

// checkWritable lets consultants change their own entries and managers the entries of their projects.
func checkWritable(db *gorm.DB, ts *domain.Timesheet, sec *session.Session) error {
	if !sec.Role.CanManageProjects() {
		own, err := consultant.OwnProfile(db, sec)
		if err != nil {
			return err
		}
		if own.ID != ts.ConsultantID {
			return bizerror.ErrForbidden
		}
		return nil
	}
	it, err := allocation.FindIntervention(db, ts.InterventionID)
	if err != nil {
		return err
	}
	p, err := project.FindProject(db, it.ProjectID)
	if err != nil {
		return err
	}
	return project.CheckManageable(p, sec)
}

func CreateTimesheet(c *domain.TimesheetCreation, sec *session.Session) (*domain.Timesheet, error) {
	if err := validateEntry(c.Date, c.Period, c.Quantity); err != nil {
		return nil, err
	}
	var record *domain.Timesheet
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		consultantID, err := resolveAuthor(tx, c.ConsultantID, sec)
		if err != nil {
			return err
		}
		it, err := interventionFor(tx, c.InterventionID, consultantID, c.Date)
		if err != nil {
			return err
		}
		if sec.Role.CanManageProjects() {
			p, err := project.FindProject(tx, it.ProjectID)
			if err != nil {
				return err
			}
			if err := project.CheckManageable(p, sec); err != nil {
				return err
			}
		}

		if _, err := ledger.Lock(tx, consultantID); err != nil {
			return err
		}
		entries, err := entriesOfDay(tx, consultantID, c.Date, 0)
		if err != nil {
			return err
		}
		if err := CheckDay(entries, c.Period, c.Quantity); err != nil {
			common.Log.WithFields(logrus.Fields{"consultantId": consultantID, "interventionId": it.ID,
				"date": c.Date.String(), "period": c.Period}).Info(err.Error())
			return err
		}

		now := time.Now()
		record = &domain.Timesheet{ID: idgen.NextID(timesheetIdWorker), ConsultantID: consultantID, InterventionID: it.ID,
			Date: c.Date, Quantity: c.Quantity, Period: c.Period, Status: domain.TimesheetDraft, Comment: c.Comment,
			CreateTime: now, UpdateTime: now}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateTimesheet changes a draft entry, day rules are checked again when the slot changes.
func UpdateTimesheet(id types.ID, u *domain.TimesheetUpdating, sec *session.Session) (*domain.Timesheet, error) {
	var record *domain.Timesheet
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		ts, err := FindTimesheet(tx, id)
		if err != nil {
			return err
		}
		if err := checkWritable(tx, ts, sec); err != nil {
			return err
		}
		if !domain.Editable(ts.Status) {
			return bizerror.ErrInvalidStateForEdit
		}

		next := *ts
		if u.Date != nil {
			next.Date = *u.Date
		}
		if u.Period != nil {
			next.Period = *u.Period
		}
		if u.Quantity != nil {
			next.Quantity = *u.Quantity
		}
		if u.Comment != nil {
			next.Comment = *u.Comment
		}

		changes := map[string]interface{}{"comment": next.Comment, "update_time": time.Now()}
		if !next.Date.Equal(ts.Date) || next.Period != ts.Period || !next.Quantity.Equal(ts.Quantity) {
			if err := validateEntry(next.Date, next.Period, next.Quantity); err != nil {
				return err
			}
			if _, err := interventionFor(tx, ts.InterventionID, ts.ConsultantID, next.Date); err != nil {
				return err
			}
			if _, err := ledger.Lock(tx, ts.ConsultantID); err != nil {
				return err
			}
			entries, err := entriesOfDay(tx, ts.ConsultantID, next.Date, ts.ID)
			if err != nil {
				return err
			}
			if err := CheckDay(entries, next.Period, next.Quantity); err != nil {
				return err
			}
			changes["date"], changes["period"], changes["quantity"] = next.Date, next.Period, next.Quantity
		}

		db := tx.Model(&domain.Timesheet{}).Where("id = ? AND status = ?", ts.ID, domain.TimesheetDraft).Updates(changes)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		next.UpdateTime = changes["update_time"].(time.Time)
		record = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func SubmitTimesheet(id types.ID, sec *session.Session) (*domain.Timesheet, error) {
	var record *domain.Timesheet
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		ts, err := FindTimesheet(tx, id)
		if err != nil {
			return err
		}
		if err := checkWritable(tx, ts, sec); err != nil {
			return err
		}
		if err := Transit(tx, ts, domain.ActionSubmit, bizerror.ErrInvalidStateForEdit); err != nil {
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

func DeleteTimesheet(id types.ID, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		ts, err := FindTimesheet(tx, id)
		if err != nil {
			return err
		}
		if err := checkWritable(tx, ts, sec); err != nil {
			return err
		}
		if !domain.Editable(ts.Status) {
			return bizerror.ErrInvalidStateForEdit
		}
		db := tx.Where("id = ? AND status = ?", ts.ID, domain.TimesheetDraft).Delete(&domain.Timesheet{})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		return nil
	})
}

// Transit moves ts along the timesheet state machine with a conditional write on its current status.
// illegal is returned when action is not allowed from the current status.
func Transit(tx *gorm.DB, ts *domain.Timesheet, action string, illegal error) error {
	next, ok := domain.NextStatus(ts.Status, action)
	if !ok {
		return illegal
	}
	now := time.Now()
	db := tx.Model(&domain.Timesheet{}).Where("id = ? AND status = ?", ts.ID, ts.Status).
		Updates(map[string]interface{}{"status": next, "update_time": now})
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrConcurrentModification
	}
	ts.Status = next
	ts.UpdateTime = now
	return nil
}

func FindTimesheet(db *gorm.DB, id types.ID) (*domain.Timesheet, error) {
	record := domain.Timesheet{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, bizerror.OrNotFound(err)
	}
	return &record, nil
}

func DetailTimesheet(id types.ID, sec *session.Session) (*domain.Timesheet, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	ts, err := FindTimesheet(db, id)
	if err != nil {
		return nil, err
	}
	if err := consultant.CheckReadable(db, ts.ConsultantID, sec); err != nil {
		return nil, err
	}
	return ts, nil
}

// QueryTimesheets filters by consultant, project, month and status, ordered by date.
// Consultants read their own entries and project owners the entries of their projects.
func QueryTimesheets(q *domain.TimesheetQuery, sec *session.Session) ([]domain.Timesheet, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if !sec.Role.CanManageProjects() {
		own, err := consultant.OwnProfile(db, sec)
		if err != nil {
			return nil, err
		}
		if q.ConsultantID != 0 && q.ConsultantID != own.ID {
			return nil, bizerror.ErrForbidden
		}
		q.ConsultantID = own.ID
	}

	// project owners only read the entries of projects they own
	scoped := sec.Role.CanManageProjects() && !sec.Role.BypassesOwnership()
	if scoped && q.ProjectID != 0 {
		p, err := project.FindProject(db, q.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := project.CheckManageable(p, sec); err != nil {
			return nil, err
		}
	}

	query := db.Table("timesheets").Select("timesheets.*")
	if q.ConsultantID != 0 {
		query = query.Where("timesheets.consultant_id = ?", q.ConsultantID)
	}
	if q.ProjectID != 0 || scoped {
		query = query.Joins("JOIN interventions ON interventions.id = timesheets.intervention_id")
	}
	if q.ProjectID != 0 {
		query = query.Where("interventions.project_id = ?", q.ProjectID)
	}
	if scoped {
		query = query.Joins("JOIN projects ON projects.id = interventions.project_id").
			Where("projects.owner_id = ?", sec.Identity.ID)
	}
	if q.Month != "" {
		first, last, err := common.ParseMonth(q.Month)
		if err != nil {
			return nil, &common.ErrBadParam{Cause: err}
		}
		query = query.Where("timesheets.date >= ? AND timesheets.date <= ?", first, last)
	}
	if q.Status != "" {
		query = query.Where("timesheets.status = ?", q.Status)
	}
	records := []domain.Timesheet{}
	if err := query.Order("timesheets.date ASC, timesheets.id ASC").Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func MonthlySummary(consultantID types.ID, month string, sec *session.Session) (*domain.MonthlySummary, error) {
	records, err := QueryTimesheets(&domain.TimesheetQuery{ConsultantID: consultantID, Month: month}, sec)
	if err != nil {
		return nil, err
	}
	summary := &domain.MonthlySummary{ConsultantID: consultantID, Month: month, TotalDays: dayTotal(records),
		Entries: len(records), CountByStatus: map[domain.TimesheetStatus]int{}}
	for _, r := range records {
		summary.CountByStatus[r.Status]++
	}
	return summary, nil
}

func DailyEntries(consultantID types.ID, date common.Date, sec *session.Session) (*domain.DailyEntries, error) {
	if date.IsZero() {
		return nil, ErrDateRequired
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if err := consultant.CheckReadable(db, consultantID, sec); err != nil {
		return nil, err
	}
	entries, err := entriesOfDay(db, consultantID, date, 0)
	if err != nil {
		return nil, err
	}
	total := dayTotal(entries)
	return &domain.DailyEntries{ConsultantID: consultantID, Date: date, Total: total,
		Remaining: decimal.Max(domain.FullDay.Sub(total), decimal.Zero), Entries: entries}, nil
}
