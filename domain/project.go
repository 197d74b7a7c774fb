package domain

import (
	"staffing/authority"
	"staffing/common"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type BillingType string

const (
	BillingRegie           BillingType = "regie"
	BillingForfait         BillingType = "forfait"
	BillingCentreDeService BillingType = "centre_de_service"
)

type ProjectStatus string

const (
	ProjectActive     ProjectStatus = "actif"
	ProjectTerminated ProjectStatus = "termine"
	ProjectCancelled  ProjectStatus = "annule"
)

// Project holds the real cost per day (CJR), never serialize it directly, use View.
type Project struct {
	ID          types.ID     `json:"id" gorm:"primary_key"`
	Name        string       `json:"name"`
	Client      string       `json:"client"`
	BillingType BillingType  `json:"billingType" sql:"type:VARCHAR(32)"`
	StartDate   common.Date  `json:"startDate" sql:"type:CHAR(10)"`
	EndDate     *common.Date `json:"endDate" sql:"type:CHAR(10)"`

	CJN        decimal.Decimal     `json:"cjn" sql:"type:DECIMAL(12,2)"`
	CJR        decimal.NullDecimal `json:"-" sql:"type:DECIMAL(12,2)"`
	SoldAmount decimal.NullDecimal `json:"soldAmount" sql:"type:DECIMAL(14,2)"`

	OwnerID types.ID      `json:"ownerId" gorm:"index:project_owner_idx"`
	Status  ProjectStatus `json:"status" sql:"type:VARCHAR(16)"`

	CreateTime time.Time `json:"createTime"`
}

// ProjectView is the projection returned by every project read path.
type ProjectView struct {
	ID          types.ID     `json:"id"`
	Name        string       `json:"name"`
	Client      string       `json:"client"`
	BillingType BillingType  `json:"billingType"`
	StartDate   common.Date  `json:"startDate"`
	EndDate     *common.Date `json:"endDate"`

	CJN        decimal.Decimal     `json:"cjn"`
	CJR        *decimal.Decimal    `json:"cjr,omitempty"`
	SoldAmount decimal.NullDecimal `json:"soldAmount"`

	OwnerID types.ID      `json:"ownerId"`
	Status  ProjectStatus `json:"status"`

	CreateTime time.Time `json:"createTime"`
}

// View strips the real cost unless the role is allowed to read it.
func (p *Project) View(role authority.Role) ProjectView {
	v := ProjectView{
		ID: p.ID, Name: p.Name, Client: p.Client, BillingType: p.BillingType, StartDate: p.StartDate, EndDate: p.EndDate,
		CJN: p.CJN, SoldAmount: p.SoldAmount, OwnerID: p.OwnerID, Status: p.Status, CreateTime: p.CreateTime,
	}
	if role.CanViewRealCost() && p.CJR.Valid {
		cjr := p.CJR.Decimal
		v.CJR = &cjr
	}
	return v
}

func (p *Project) OwnedBy(uid types.ID) bool {
	return p.OwnerID == uid
}

type ProjectCreation struct {
	Name        string              `json:"name" binding:"required,lte=120"`
	Client      string              `json:"client" binding:"required,lte=120"`
	BillingType BillingType         `json:"billingType" binding:"required,oneof=regie forfait centre_de_service"`
	StartDate   common.Date         `json:"startDate"`
	EndDate     *common.Date        `json:"endDate"`
	CJN         decimal.Decimal     `json:"cjn"`
	CJR         decimal.NullDecimal `json:"cjr"`
	SoldAmount  decimal.NullDecimal `json:"soldAmount"`
	OwnerID     types.ID            `json:"ownerId"`
}

type ProjectStatusUpdating struct {
	Status ProjectStatus `json:"status" binding:"required,oneof=actif termine annule"`
}
