package project

import (
	"errors"
	"staffing/account"
	"staffing/authority"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
	"staffing/idgen"
	"staffing/persistence"
	"staffing/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var (
	projectIdWorker = idgen.NewWorker()

	ErrStartDateRequired = &common.ErrBadParam{Cause: errors.New("start date is required")}
	ErrNegativeCost      = &common.ErrBadParam{Cause: errors.New("costs must not be negative")}
	ErrOwnerInvalid      = &common.ErrBadParam{Cause: errors.New("owner must be a project owner, administrator or directeur")}

	CreateProjectFunc       = CreateProject
	QueryActiveProjectsFunc = QueryActiveProjects
	QueryOwnedProjectsFunc  = QueryOwnedProjects
	DetailProjectFunc       = DetailProject
	UpdateProjectStatusFunc = UpdateProjectStatus
)

func CreateProject(c *domain.ProjectCreation, sec *session.Session) (*domain.ProjectView, error) {
	if !sec.Role.CanManageProjects() {
		return nil, bizerror.ErrForbidden
	}
	if c.StartDate.IsZero() {
		return nil, ErrStartDateRequired
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return nil, bizerror.ErrInvalidPeriod
	}
	if c.CJN.LessThan(decimal.Zero) || (c.CJR.Valid && c.CJR.Decimal.LessThan(decimal.Zero)) {
		return nil, ErrNegativeCost
	}
	// the real cost is only ever set by a directeur
	if c.CJR.Valid && !sec.Role.CanViewRealCost() {
		return nil, bizerror.ErrRoleForbidden
	}

	ownerID := c.OwnerID
	if ownerID == 0 || sec.Role == authority.ProjectOwner {
		ownerID = sec.Identity.ID
	}
	record := domain.Project{ID: idgen.NextID(projectIdWorker), Name: c.Name, Client: c.Client, BillingType: c.BillingType,
		StartDate: c.StartDate, EndDate: c.EndDate, CJN: c.CJN, CJR: c.CJR, SoldAmount: c.SoldAmount,
		OwnerID: ownerID, Status: domain.ProjectActive, CreateTime: time.Now()}

	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if ownerID != sec.Identity.ID {
			owner := account.User{}
			if err := tx.Where("id = ?", ownerID).First(&owner).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrOwnerInvalid
				}
				return err
			}
			if !owner.Role.CanManageProjects() {
				return ErrOwnerInvalid
			}
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	view := record.View(sec.Role)
	return &view, nil
}

func QueryActiveProjects(sec *session.Session) ([]domain.ProjectView, error) {
	var records []domain.Project
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if err := db.Where("status = ?", domain.ProjectActive).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return views(records, sec.Role), nil
}

func QueryOwnedProjects(sec *session.Session) ([]domain.ProjectView, error) {
	if !sec.Role.CanManageProjects() {
		return nil, bizerror.ErrForbidden
	}
	var records []domain.Project
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if err := db.Where("owner_id = ?", sec.Identity.ID).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return views(records, sec.Role), nil
}

func DetailProject(id types.ID, sec *session.Session) (*domain.ProjectView, error) {
	record, err := FindProject(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
	if err != nil {
		return nil, err
	}
	view := record.View(sec.Role)
	return &view, nil
}

func UpdateProjectStatus(id types.ID, u *domain.ProjectStatusUpdating, sec *session.Session) (*domain.ProjectView, error) {
	var record *domain.Project
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		p, err := FindProject(tx, id)
		if err != nil {
			return err
		}
		if err := CheckManageable(p, sec); err != nil {
			return err
		}
		if err := tx.Model(&domain.Project{}).Where("id = ?", id).Update("status", u.Status).Error; err != nil {
			return err
		}
		p.Status = u.Status
		record = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := record.View(sec.Role)
	return &view, nil
}

// CheckManageable allows the owner of the project, administrators and directeurs.
func CheckManageable(p *domain.Project, sec *session.Session) error {
	if sec.Role.BypassesOwnership() {
		return nil
	}
	if sec.Role == authority.ProjectOwner && p.OwnedBy(sec.Identity.ID) {
		return nil
	}
	return bizerror.ErrForbidden
}

func FindProject(db *gorm.DB, id types.ID) (*domain.Project, error) {
	record := domain.Project{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, bizerror.OrNotFound(err)
	}
	return &record, nil
}

func views(records []domain.Project, role authority.Role) []domain.ProjectView {
	result := make([]domain.ProjectView, 0, len(records))
	for i := range records {
		result = append(result, records[i].View(role))
	}
	return result
}
