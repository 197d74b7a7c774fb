package account

import (
	"staffing/authority"
	"time"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Email  string   `json:"email" gorm:"unique_index:user_email_unique"`
	Secret string   `json:"-"`

	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      authority.Role `json:"role" sql:"type:VARCHAR(32)"`

	CreateTime time.Time `json:"createTime"`
}

type UserInfo struct {
	ID        types.ID       `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      authority.Role `json:"role"`
}

type UserCreation struct {
	Email     string         `json:"email" binding:"required,email,lte=120"`
	Password  string         `json:"password" binding:"required,gte=8,lte=72"`
	FirstName string         `json:"firstName" binding:"required,lte=60"`
	LastName  string         `json:"lastName" binding:"required,lte=60"`
	Role      authority.Role `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserInfo  `json:"user"`
}

type PasswordUpdating struct {
	OriginalPassword string `json:"originalPassword" binding:"required"`
	NewPassword      string `json:"newPassword" binding:"required,gte=8,lte=72"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}

func (u UserInfo) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
