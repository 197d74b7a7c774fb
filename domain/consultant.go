package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type Consultant struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId" gorm:"unique_index:consultant_user_unique"`

	DailyRate decimal.Decimal `json:"dailyRate" sql:"type:DECIMAL(12,2)"`
	Skills    Skills          `json:"skills" sql:"type:TEXT"`
	Available bool            `json:"available"`

	CreateTime time.Time `json:"createTime"`
}

type ConsultantDetail struct {
	Consultant
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ConsultantCreation struct {
	UserID    types.ID        `json:"userId" binding:"required"`
	DailyRate decimal.Decimal `json:"dailyRate"`
	Skills    Skills          `json:"skills" binding:"dive"`
	Available *bool           `json:"available"`
}

type AvailabilityUpdating struct {
	Available *bool `json:"available" binding:"required"`
}
