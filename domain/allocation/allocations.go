package allocation

import (
	"errors"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
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
	interventionIdWorker = idgen.NewWorker()

	ErrStartDateRequired   = &common.ErrBadParam{Cause: errors.New("start date is required")}
	ErrNegativeBillingRate = &common.ErrBadParam{Cause: errors.New("billing rate must not be negative")}

	CheckConflictsFunc     = CheckConflicts
	CreateInterventionFunc = CreateIntervention
	UpdateAllocationFunc   = UpdateAllocation
	EndInterventionFunc    = EndIntervention
	DeleteInterventionFunc = DeleteIntervention
	CurrentAllocationFunc  = CurrentAllocation
	DetailInterventionFunc = DetailIntervention
	QueryInterventionsFunc = QueryInterventions
)

type ConflictQuery struct {
	ConsultantID types.ID     `json:"consultantId" binding:"required"`
	StartDate    common.Date  `json:"startDate"`
	EndDate      *common.Date `json:"endDate"`
	Allocation   int          `json:"allocation"`
	ExcludeID    types.ID     `json:"excludeId"`
}

func validatePeriod(start common.Date, end *common.Date) error {
	if start.IsZero() {
		return ErrStartDateRequired
	}
	if end != nil && end.Before(start) {
		return bizerror.ErrInvalidPeriod
	}
	return nil
}

func validateAllocation(pct int) error {
	if pct < 0 || pct > domain.MaxAllocation {
		return bizerror.ErrInvalidAllocation
	}
	return nil
}

func loadActive(db *gorm.DB, consultantID types.ID) ([]domain.Intervention, error) {
	var records []domain.Intervention
	if err := db.Where("consultant_id = ? AND status = ?", consultantID, domain.InterventionActive).
		Order("start_date ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CheckConflicts lists the interventions which would push the consultant over 100% on the period.
func CheckConflicts(q *ConflictQuery, sec *session.Session) ([]domain.AllocationConflict, error) {
	if err := validatePeriod(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	if err := validateAllocation(q.Allocation); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if err := consultant.CheckReadable(db, q.ConsultantID, sec); err != nil {
		return nil, err
	}
	existing, err := loadActive(db, q.ConsultantID)
	if err != nil {
		return nil, err
	}
	return Conflicts(existing, common.DateRange{Start: q.StartDate, End: q.EndDate}, q.Allocation, q.ExcludeID), nil
}

func CreateIntervention(c *domain.InterventionCreation, sec *session.Session) (*domain.Intervention, error) {
	if !sec.Role.CanManageProjects() {
		return nil, bizerror.ErrForbidden
	}
	if err := validatePeriod(c.StartDate, c.EndDate); err != nil {
		return nil, err
	}
	if err := validateAllocation(c.Allocation); err != nil {
		return nil, err
	}
	if c.BillingRate.LessThan(decimal.Zero) {
		return nil, ErrNegativeBillingRate
	}

	record := domain.Intervention{ID: idgen.NextID(interventionIdWorker), ConsultantID: c.ConsultantID, ProjectID: c.ProjectID,
		StartDate: c.StartDate, EndDate: c.EndDate, BillingRate: c.BillingRate, Allocation: c.Allocation,
		Status: domain.InterventionActive, CreateTime: time.Now()}

	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if _, err := consultant.FindConsultant(tx, c.ConsultantID); err != nil {
			return err
		}
		p, err := project.FindProject(tx, c.ProjectID)
		if err != nil {
			return err
		}
		if err := project.CheckManageable(p, sec); err != nil {
			return err
		}

		if _, err := ledger.Lock(tx, c.ConsultantID); err != nil {
			return err
		}
		existing, err := loadActive(tx, c.ConsultantID)
		if err != nil {
			return err
		}
		if conflicts := Conflicts(existing, record.Period(), record.Allocation, 0); len(conflicts) > 0 {
			common.Log.WithFields(logrus.Fields{"consultantId": c.ConsultantID, "projectId": c.ProjectID,
				"allocation": c.Allocation, "conflicts": len(conflicts)}).Info("intervention rejected by allocation conflict")
			return bizerror.ErrAllocationConflict.WithData(conflicts)
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func UpdateAllocation(id types.ID, u *domain.AllocationUpdating, sec *session.Session) (*domain.Intervention, error) {
	if err := validateAllocation(*u.Allocation); err != nil {
		return nil, err
	}
	var record *domain.Intervention
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		it, err := findManageable(tx, id, sec)
		if err != nil {
			return err
		}
		if !it.Active() {
			return bizerror.ErrInterventionTerminated
		}
		if _, err := ledger.Lock(tx, it.ConsultantID); err != nil {
			return err
		}
		existing, err := loadActive(tx, it.ConsultantID)
		if err != nil {
			return err
		}
		if conflicts := Conflicts(existing, it.Period(), *u.Allocation, it.ID); len(conflicts) > 0 {
			common.Log.WithFields(logrus.Fields{"consultantId": it.ConsultantID, "interventionId": it.ID,
				"allocation": *u.Allocation, "conflicts": len(conflicts)}).Info("allocation update rejected by allocation conflict")
			return bizerror.ErrAllocationConflict.WithData(conflicts)
		}
		db := tx.Model(&domain.Intervention{}).Where("id = ? AND status = ?", it.ID, domain.InterventionActive).
			Update("allocation", *u.Allocation)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		it.Allocation = *u.Allocation
		record = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// EndIntervention terminates an intervention today, a second call fails with ErrAlreadyTerminated.
func EndIntervention(id types.ID, sec *session.Session) (*domain.Intervention, error) {
	var record *domain.Intervention
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		it, err := findManageable(tx, id, sec)
		if err != nil {
			return err
		}
		if !it.Active() {
			return bizerror.ErrAlreadyTerminated
		}
		if _, err := ledger.Lock(tx, it.ConsultantID); err != nil {
			return err
		}
		end := common.Today()
		// an intervention ended before it began keeps a one day period
		if end.Before(it.StartDate) {
			end = it.StartDate
		}
		db := tx.Model(&domain.Intervention{}).Where("id = ? AND status = ?", it.ID, domain.InterventionActive).
			Updates(map[string]interface{}{"end_date": end, "status": domain.InterventionTerminated})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrAlreadyTerminated
		}
		it.EndDate = &end
		it.Status = domain.InterventionTerminated
		record = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func DeleteIntervention(id types.ID, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		it, err := findManageable(tx, id, sec)
		if err != nil {
			return err
		}
		if _, err := ledger.Lock(tx, it.ConsultantID); err != nil {
			return err
		}
		var dependents int
		if err := tx.Model(&domain.Timesheet{}).Where("intervention_id = ?", it.ID).Count(&dependents).Error; err != nil {
			return err
		}
		if dependents > 0 {
			return bizerror.ErrHasDependentTimesheets.WithData(map[string]int{"timesheets": dependents})
		}
		return tx.Delete(&domain.Intervention{}, "id = ?", it.ID).Error
	})
}

// CurrentAllocation sums the active interventions of the consultant covering today.
func CurrentAllocation(consultantID types.ID, sec *session.Session) (*domain.AllocationStatus, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if _, err := consultant.FindConsultant(db, consultantID); err != nil {
		return nil, err
	}
	if err := consultant.CheckReadable(db, consultantID, sec); err != nil {
		return nil, err
	}
	existing, err := loadActive(db, consultantID)
	if err != nil {
		return nil, err
	}
	today := common.Today()
	current := AllocatedOn(existing, today)
	return &domain.AllocationStatus{ConsultantID: consultantID, Date: today, Current: current,
		Available: domain.MaxAllocation - current}, nil
}

func DetailIntervention(id types.ID, sec *session.Session) (*domain.Intervention, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	it, err := FindIntervention(db, id)
	if err != nil {
		return nil, err
	}
	if err := consultant.CheckReadable(db, it.ConsultantID, sec); err != nil {
		return nil, err
	}
	return it, nil
}

// QueryInterventions filters by consultant and project, consultants always see only their own.
func QueryInterventions(q *domain.InterventionQuery, sec *session.Session) ([]domain.Intervention, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if !sec.Role.CanManageProjects() {
		c, err := consultant.OwnProfile(db, sec)
		if err != nil {
			return nil, err
		}
		if q.ConsultantID != 0 && q.ConsultantID != c.ID {
			return nil, bizerror.ErrForbidden
		}
		q.ConsultantID = c.ID
	}

	query := db.Model(&domain.Intervention{})
	if q.ConsultantID != 0 {
		query = query.Where("consultant_id = ?", q.ConsultantID)
	}
	if q.ProjectID != 0 {
		query = query.Where("project_id = ?", q.ProjectID)
	}
	if q.ActiveOnly {
		query = query.Where("status = ?", domain.InterventionActive)
	}
	records := []domain.Intervention{}
	if err := query.Order("start_date ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func FindIntervention(db *gorm.DB, id types.ID) (*domain.Intervention, error) {
	record := domain.Intervention{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, bizerror.OrNotFound(err)
	}
	return &record, nil
}

func findManageable(tx *gorm.DB, id types.ID, sec *session.Session) (*domain.Intervention, error) {
	if !sec.Role.CanManageProjects() {
		return nil, bizerror.ErrForbidden
	}
	it, err := FindIntervention(tx, id)
	if err != nil {
		return nil, err
	}
	p, err := project.FindProject(tx, it.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := project.CheckManageable(p, sec); err != nil {
		return nil, err
	}
	return it, nil
}
