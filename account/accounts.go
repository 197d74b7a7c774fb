package account

import (
	"errors"
	"staffing/authority"
	"staffing/bizerror"
	"staffing/common"
	"staffing/credential"
	"staffing/idgen"
	"staffing/persistence"
	"staffing/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	userIdWorker = idgen.NewWorker()

	// ActiveTokenService signs the tokens handed out by Login.
	ActiveTokenService *credential.TokenService
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func CreateUser(c *UserCreation, sec *session.Session) (*UserInfo, error) {
	if !sec.Role.CanManageUsers() {
		return nil, bizerror.ErrForbidden
	}
	if !c.Role.Valid() {
		return nil, &common.ErrBadParam{Cause: errors.New("unknown role")}
	}
	// only a directeur may appoint another directeur
	if c.Role == authority.Directeur && sec.Role != authority.Directeur {
		return nil, bizerror.ErrForbidden
	}

	secret, err := credential.HashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	user := User{ID: idgen.NextID(userIdWorker), Email: normalizeEmail(c.Email), Secret: secret,
		FirstName: c.FirstName, LastName: c.LastName, Role: c.Role, CreateTime: time.Now()}

	err = persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		var count int
		if err := tx.Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return bizerror.ErrDuplicated.WithMessage("email already registered")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	info := user.Info()
	return &info, nil
}

func QueryUsers(sec *session.Session) (*[]UserInfo, error) {
	if !sec.Role.CanManageUsers() {
		return nil, bizerror.ErrForbidden
	}
	var users []User
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.Info())
	}
	return &infos, nil
}

func DetailCurrentUser(sec *session.Session) (*UserInfo, error) {
	user := User{}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Where("id = ?", sec.Identity.ID).First(&user).Error; err != nil {
		return nil, bizerror.OrNotFound(err)
	}
	info := user.Info()
	return &info, nil
}

// Login verifies the credentials and returns a signed token, the session is cached right away.
func Login(req *LoginRequest, meta *session.Session) (*LoginResult, error) {
	user := User{}
	err := persistence.ActiveDataSourceManager.GormDB(meta.Ctx()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrInvalidPassword
		}
		return nil, err
	}
	if !credential.VerifyPassword(req.Password, user.Secret) {
		common.Log.WithFields(logrus.Fields{"userId": user.ID, "ip": meta.ClientIP}).Info("login rejected")
		return nil, bizerror.ErrInvalidPassword
	}

	token, claims, err := ActiveTokenService.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	s := &session.Session{
		Token:       token,
		Identity:    session.Identity{ID: user.ID, Email: user.Email, Name: user.Info().DisplayName()},
		Role:        user.Role,
		SigningTime: claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}
	session.Remember(s)
	return &LoginResult{Token: token, ExpiresAt: s.ExpiresAt, User: user.Info()}, nil
}

func Logout(sec *session.Session) {
	if sec != nil && sec.Token != "" {
		session.Revoke(sec)
	}
}

func UpdatePassword(u *PasswordUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where("id = ?", sec.Identity.ID).First(&user).Error; err != nil {
			return bizerror.OrNotFound(err)
		}
		if !credential.VerifyPassword(u.OriginalPassword, user.Secret) {
			return bizerror.ErrInvalidPassword
		}
		secret, err := credential.HashPassword(u.NewPassword)
		if err != nil {
			return err
		}
		return tx.Model(&User{}).Where("id = ?", user.ID).Update("secret", secret).Error
	})
}

// QueryUserInfos returns the users of the given ids, keyed by id.
func QueryUserInfos(db *gorm.DB, ids []types.ID) (map[types.ID]UserInfo, error) {
	result := map[types.ID]UserInfo{}
	if len(ids) == 0 {
		return result, nil
	}
	var records []User
	if err := db.Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		result[r.ID] = r.Info()
	}
	return result, nil
}

// BootstrapDirecteur creates the first directeur account of an empty user table.
func BootstrapDirecteur(email, password string) (*UserInfo, error) {
	if password == "" {
		return nil, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	var count int
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}
	system := &session.Session{Identity: session.Identity{ID: 0}, Role: authority.Directeur}
	info, err := CreateUser(&UserCreation{Email: email, Password: password, FirstName: "Directeur", Role: authority.Directeur}, system)
	if err != nil {
		return nil, err
	}
	common.Log.WithField("email", info.Email).Info("initial directeur account created")
	return info, nil
}
