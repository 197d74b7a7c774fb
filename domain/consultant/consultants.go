package consultant

import (
	"errors"
	"staffing/account"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/ledger"
	"staffing/idgen"
	"staffing/persistence"
	"staffing/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

const (
	detailSelect = "consultants.*, users.email, users.first_name, users.last_name"
	detailJoin   = "LEFT JOIN users ON users.id = consultants.user_id"
)

var (
	consultantIdWorker = idgen.NewWorker()

	ErrNegativeDailyRate = &common.ErrBadParam{Cause: errors.New("daily rate must not be negative")}
	ErrUserMissing       = &common.ErrBadParam{Cause: errors.New("user of consultant not found")}

	CreateConsultantFunc   = CreateConsultant
	QueryConsultantsFunc   = QueryConsultants
	DetailConsultantFunc   = DetailConsultant
	DetailMeFunc           = DetailMe
	UpdateAvailabilityFunc = UpdateAvailability
)

func CreateConsultant(c *domain.ConsultantCreation, sec *session.Session) (*domain.Consultant, error) {
	if !sec.Role.CanManageUsers() {
		return nil, bizerror.ErrForbidden
	}
	if c.DailyRate.LessThan(decimal.Zero) {
		return nil, ErrNegativeDailyRate
	}
	available := true
	if c.Available != nil {
		available = *c.Available
	}
	skills := c.Skills
	if skills == nil {
		skills = domain.Skills{}
	}
	record := domain.Consultant{ID: idgen.NextID(consultantIdWorker), UserID: c.UserID, DailyRate: c.DailyRate,
		Skills: skills, Available: available, CreateTime: time.Now()}

	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		var users int
		if err := tx.Model(&account.User{}).Where("id = ?", c.UserID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return ErrUserMissing
		}
		var existed int
		if err := tx.Model(&domain.Consultant{}).Where("user_id = ?", c.UserID).Count(&existed).Error; err != nil {
			return err
		}
		if existed > 0 {
			return bizerror.ErrDuplicated.WithMessage("user already has a consultant profile")
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return ledger.Open(tx, record.ID)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryConsultants(sec *session.Session) ([]domain.ConsultantDetail, error) {
	if !sec.Role.CanManageUsers() {
		return nil, bizerror.ErrForbidden
	}
	details := []domain.ConsultantDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if err := db.Table("consultants").Select(detailSelect).Joins(detailJoin).
		Order("users.last_name ASC, users.first_name ASC, consultants.id ASC").Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// DetailConsultant returns a profile, consultants may only read their own.
func DetailConsultant(id types.ID, sec *session.Session) (*domain.ConsultantDetail, error) {
	detail, err := findDetail(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), "consultants.id = ?", id)
	if err != nil {
		return nil, err
	}
	if !sec.Role.CanManageProjects() && detail.UserID != sec.Identity.ID {
		return nil, bizerror.ErrForbidden
	}
	return detail, nil
}

func DetailMe(sec *session.Session) (*domain.ConsultantDetail, error) {
	return findDetail(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), "consultants.user_id = ?", sec.Identity.ID)
}

func UpdateAvailability(id types.ID, u *domain.AvailabilityUpdating, sec *session.Session) (*domain.Consultant, error) {
	if !sec.Role.CanManageUsers() {
		return nil, bizerror.ErrForbidden
	}
	record := domain.Consultant{}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			return bizerror.OrNotFound(err)
		}
		if err := tx.Model(&domain.Consultant{}).Where("id = ?", id).Update("available", *u.Available).Error; err != nil {
			return err
		}
		record.Available = *u.Available
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ConsultantOfUser returns the consultant profile linked to a user.
func ConsultantOfUser(db *gorm.DB, uid types.ID) (*domain.Consultant, error) {
	record := domain.Consultant{}
	if err := db.Where("user_id = ?", uid).First(&record).Error; err != nil {
		return nil, bizerror.OrNotFound(err)
	}
	return &record, nil
}

// FindConsultant loads a consultant by id.
func FindConsultant(db *gorm.DB, id types.ID) (*domain.Consultant, error) {
	record := domain.Consultant{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, bizerror.OrNotFound(err)
	}
	return &record, nil
}

func findDetail(db *gorm.DB, where string, arg interface{}) (*domain.ConsultantDetail, error) {
	details := []domain.ConsultantDetail{}
	if err := db.Table("consultants").Select(detailSelect).Joins(detailJoin).Where(where, arg).Limit(1).Scan(&details).Error; err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, bizerror.ErrNotFound
	}
	return &details[0], nil
}

// OwnProfile returns the consultant profile of the caller, callers without one are forbidden.
func OwnProfile(db *gorm.DB, sec *session.Session) (*domain.Consultant, error) {
	c, err := ConsultantOfUser(db, sec.Identity.ID)
	if err != nil {
		if errors.Is(err, bizerror.ErrNotFound) {
			return nil, bizerror.ErrForbidden
		}
		return nil, err
	}
	return c, nil
}

// CheckReadable lets project owners and above read any consultant data, consultants only their own.
func CheckReadable(db *gorm.DB, consultantID types.ID, sec *session.Session) error {
	if sec.Role.CanManageProjects() {
		return nil
	}
	c, err := OwnProfile(db, sec)
	if err != nil {
		return err
	}
	if c.ID != consultantID {
		return bizerror.ErrForbidden
	}
	return nil
}
