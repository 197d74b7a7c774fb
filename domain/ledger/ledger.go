package ledger

import (
	"staffing/bizerror"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// ConsultantLedger is the serialization point of every allocation and timesheet write of a consultant.
type ConsultantLedger struct {
	ConsultantID types.ID  `json:"consultantId" gorm:"primary_key;auto_increment:false"`
	Version      int64     `json:"version"`
	UpdateTime   time.Time `json:"updateTime"`
}

// Open creates the ledger row of a consultant.
func Open(tx *gorm.DB, consultantID types.ID) error {
	return tx.Create(&ConsultantLedger{ConsultantID: consultantID, Version: 0, UpdateTime: time.Now()}).Error
}

// Lock bumps the ledger version inside tx. The updated row stays write locked until tx ends,
// so concurrent check-then-write sequences of the same consultant are serialized.
func Lock(tx *gorm.DB, consultantID types.ID) (int64, error) {
	db := tx.Model(&ConsultantLedger{}).Where("consultant_id = ?", consultantID).
		Updates(map[string]interface{}{"version": gorm.Expr("version + 1"), "update_time": time.Now()})
	if db.Error != nil {
		return 0, db.Error
	}
	if db.RowsAffected == 0 {
		// consultants created before the ledger existed
		if err := tx.Create(&ConsultantLedger{ConsultantID: consultantID, Version: 1, UpdateTime: time.Now()}).Error; err != nil {
			return 0, bizerror.ErrConcurrentModification
		}
		return 1, nil
	}
	if db.RowsAffected != 1 {
		return 0, bizerror.ErrConcurrentModification
	}

	l := ConsultantLedger{}
	if err := tx.Where("consultant_id = ?", consultantID).First(&l).Error; err != nil {
		return 0, err
	}
	return l.Version, nil
}
