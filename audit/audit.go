package audit

import (
	"staffing/account"
	"staffing/bizerror"
	"staffing/common"
	"staffing/idgen"
	"staffing/persistence"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const defaultQueryLimit = 100

var (
	auditIdWorker = idgen.NewWorker()

	QueryEntriesFunc = QueryEntries
	QueryStatsFunc   = QueryStats
)

// Record appends an entry inside the caller's transaction, so the audited read fails with it.
func Record(tx *gorm.DB, sec *session.Session, action Action, resourceType, resourceID, detail string) (*AuditLogEntry, error) {
	now := common.TimeNow()
	entry := &AuditLogEntry{
		ID:           idgen.NextID(auditIdWorker),
		UserID:       sec.Identity.ID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     Metadata{IP: sec.ClientIP, UserAgent: sec.UserAgent, Timestamp: now, Detail: detail},
		CreateTime:   now,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	common.Log.WithFields(logrus.Fields{"userId": entry.UserID, "action": action,
		"resourceType": resourceType, "resourceId": resourceID}).Info("real cost data accessed")
	return entry, nil
}

// QueryEntries lists entries newest first, filtered by actor or by resource.
func QueryEntries(q *EntryQuery, sec *session.Session) ([]EntryView, error) {
	if !sec.Role.CanViewRealCost() {
		return nil, bizerror.ErrRoleForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	query := db.Model(&AuditLogEntry{})
	if q.UserID != 0 {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.ResourceType != "" {
		query = query.Where("resource_type = ?", q.ResourceType)
	}
	if q.ResourceID != "" {
		query = query.Where("resource_id = ?", q.ResourceID)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	var entries []AuditLogEntry
	if err := query.Order("create_time DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}

	actorIds := make([]types.ID, 0, len(entries))
	for _, e := range entries {
		actorIds = append(actorIds, e.UserID)
	}
	actors, err := account.QueryUserInfos(db, actorIds)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		v := EntryView{AuditLogEntry: e}
		if actor, found := actors[e.UserID]; found {
			v.ActorName = actor.DisplayName()
			v.ActorEmail = actor.Email
			v.ActorRole = actor.Role.String()
		}
		views = append(views, v)
	}
	return views, nil
}

// QueryStats counts entries and distinct actors per action, busiest action first.
func QueryStats(q *StatsQuery, sec *session.Session) ([]ActionStats, error) {
	if !sec.Role.CanViewRealCost() {
		return nil, bizerror.ErrRoleForbidden
	}
	query := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Model(&AuditLogEntry{}).
		Select("action, COUNT(*) AS count, COUNT(DISTINCT user_id) AS unique_users")
	if !q.From.IsZero() {
		query = query.Where("create_time >= ?", q.From)
	}
	if !q.To.IsZero() {
		// the bound is a calendar day, include all of it
		query = query.Where("create_time < ?", q.To.AddDate(0, 0, 1))
	}
	stats := []ActionStats{}
	if err := query.Group("action").Order("count DESC, action ASC").Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
