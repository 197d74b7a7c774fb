package schema

import (
	"staffing/account"
	"staffing/assistant"
	"staffing/audit"
	"staffing/domain"
	"staffing/domain/ledger"

	"github.com/jinzhu/gorm"
)

// Models lists every persisted entity in creation order.
func Models() []interface{} {
	return []interface{}{
		&account.User{},
		&domain.Consultant{},
		&ledger.ConsultantLedger{},
		&domain.Project{},
		&domain.Intervention{},
		&domain.Timesheet{},
		&domain.Validation{},
		&audit.AuditLogEntry{},
		&assistant.Conversation{},
		&assistant.ChatMessage{},
	}
}

// Migrate creates or upgrades the tables, indexes come from the gorm tags of each model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...).Error
}
