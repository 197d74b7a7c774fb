package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Action string

const (
	ActionViewProjectMarginCJR Action = "VIEW_PROJECT_MARGIN_CJR"
	ActionViewAllMarginsCJR    Action = "VIEW_ALL_MARGINS_CJR"
	ActionViewConsultantCJR    Action = "VIEW_CONSULTANT_CJR"
	ActionViewInterventionCJR  Action = "VIEW_INTERVENTION_CJR"
	ActionExportCJRData        Action = "EXPORT_CJR_DATA"
)

const (
	ResourceProjects      = "projects"
	ResourceConsultants   = "consultants"
	ResourceInterventions = "interventions"

	// AnyResource is the resource id of views spanning every resource of a type.
	AnyResource = "*"
)

// AuditLogEntry is written once and never updated.
type AuditLogEntry struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	UserID       types.ID `json:"userId" gorm:"index:audit_actor_idx"`
	Action       Action   `json:"action" sql:"type:VARCHAR(64)"`
	ResourceType string   `json:"resourceType" sql:"type:VARCHAR(32)" gorm:"index:audit_resource_idx"`
	ResourceID   string   `json:"resourceId" sql:"type:VARCHAR(32)" gorm:"index:audit_resource_idx"`
	Metadata     Metadata `json:"metadata" sql:"type:TEXT"`

	CreateTime time.Time `json:"createTime"`
}

func (e *AuditLogEntry) TableName() string {
	return "audit_logs"
}

// Metadata describes the caller of an audited read.
type Metadata struct {
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

func (m Metadata) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&m)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (m *Metadata) Scan(v interface{}) error {
	if v == nil {
		*m = Metadata{}
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), m)
}

// EntryView is an entry joined with its actor.
type EntryView struct {
	AuditLogEntry
	ActorName  string `json:"actorName"`
	ActorEmail string `json:"actorEmail"`
	ActorRole  string `json:"actorRole"`
}

type EntryQuery struct {
	UserID       types.ID `form:"userId"`
	ResourceType string   `form:"resourceType"`
	ResourceID   string   `form:"resourceId"`
	Limit        int      `form:"limit" binding:"omitempty,min=1,max=1000"`
}

type StatsQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

type ActionStats struct {
	Action      Action `json:"action"`
	Count       int    `json:"count"`
	UniqueUsers int    `json:"uniqueUsers"`
}
