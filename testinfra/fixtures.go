package testinfra

import (
	"context"
	"log"
	"staffing/account"
	"staffing/authority"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/ledger"
	"staffing/schema"
	"sync/atomic"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

var fixtureSeq int64 = 1000

func nextFixtureID() types.ID {
	return types.ID(atomic.AddInt64(&fixtureSeq, 1))
}

// StartMigratedTestDatabase starts a test database holding the full schema.
func StartMigratedTestDatabase(baseName string) *TestDatabase {
	db := StartTestDatabase(baseName)
	if err := schema.Migrate(db.DS.GormDB(context.Background())); err != nil {
		StopTestDatabase(db)
		log.Fatalf("failed to migrate test database %v\n", err)
	}
	return db
}

func (d *TestDatabase) mustCreate(v interface{}) {
	if err := d.DS.GormDB(context.Background()).Create(v).Error; err != nil {
		log.Fatalf("failed to create fixture %T: %v\n", v, err)
	}
}

func (d *TestDatabase) SeedUser(role authority.Role) account.User {
	id := nextFixtureID()
	u := account.User{ID: id, Email: "user" + id.String() + "@example.com", Secret: "-",
		FirstName: "First" + id.String(), LastName: "Last" + id.String(), Role: role, CreateTime: time.Now()}
	d.mustCreate(&u)
	return u
}

// SeedConsultant creates a consultant user, its profile and its ledger row.
func (d *TestDatabase) SeedConsultant(dailyRate int64) (account.User, domain.Consultant) {
	u := d.SeedUser(authority.Consultant)
	c := domain.Consultant{ID: nextFixtureID(), UserID: u.ID, DailyRate: decimal.NewFromInt(dailyRate),
		Skills: domain.Skills{{Name: "go"}}, Available: true, CreateTime: time.Now()}
	d.mustCreate(&c)
	d.mustCreate(&ledger.ConsultantLedger{ConsultantID: c.ID, UpdateTime: time.Now()})
	return u, c
}

// SeedProject creates an active project, cjr is left null when negative.
func (d *TestDatabase) SeedProject(ownerID types.ID, cjn, cjr int64) domain.Project {
	id := nextFixtureID()
	p := domain.Project{ID: id, Name: "project " + id.String(), Client: "client", BillingType: domain.BillingRegie,
		StartDate: common.MustParseDate("2024-01-01"), CJN: decimal.NewFromInt(cjn), OwnerID: ownerID,
		Status: domain.ProjectActive, CreateTime: time.Now()}
	if cjr >= 0 {
		p.CJR = decimal.NullDecimal{Decimal: decimal.NewFromInt(cjr), Valid: true}
	}
	d.mustCreate(&p)
	return p
}

func (d *TestDatabase) SeedIntervention(consultantID, projectID types.ID, start string, end string, allocation int, rate int64) domain.Intervention {
	i := domain.Intervention{ID: nextFixtureID(), ConsultantID: consultantID, ProjectID: projectID,
		StartDate: common.MustParseDate(start), BillingRate: decimal.NewFromInt(rate), Allocation: allocation,
		Status: domain.InterventionActive, CreateTime: time.Now()}
	if end != "" {
		e := common.MustParseDate(end)
		i.EndDate = &e
	}
	d.mustCreate(&i)
	return i
}

func (d *TestDatabase) SeedTimesheet(i domain.Intervention, date string, period domain.Period, status domain.TimesheetStatus) domain.Timesheet {
	qty := domain.HalfDay
	if period == domain.PeriodFullDay {
		qty = domain.FullDay
	}
	now := time.Now()
	t := domain.Timesheet{ID: nextFixtureID(), ConsultantID: i.ConsultantID, InterventionID: i.ID,
		Date: common.MustParseDate(date), Quantity: qty, Period: period, Status: status, CreateTime: now, UpdateTime: now}
	d.mustCreate(&t)
	return t
}
