package dashboard_test

import (
	"context"
	"errors"
	"staffing/account"
	"staffing/audit"
	"staffing/authority"
	"staffing/bizerror"
	"staffing/common"
	"staffing/domain"
	"staffing/domain/dashboard"
	"staffing/persistence"
	"staffing/session"
	"staffing/testinfra"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type fixture struct {
	db          *testinfra.TestDatabase
	owner       account.User
	otherOwner  account.User
	busy        domain.Consultant
	idle        domain.Consultant
	owned       domain.Project
	foreign     domain.Project
	busyOwned   domain.Intervention
	busyForeign domain.Intervention
	idleOwned   domain.Intervention
	idleLater   domain.Intervention
	busySec     *session.Session
	idleSec     *session.Session
	ownerSec    *session.Session
	adminSec    *session.Session
	directeur   *session.Session
}

// setup runs on 2024-01-10. The busy consultant is at 90% today, the unavailable one at 50%
// today and at 120% from 2024-02-01.
func setup(t *testing.T, testDatabase **testinfra.TestDatabase) *fixture {
	common.TimeNow = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }
	db := testinfra.StartMigratedTestDatabase("dashboard")
	*testDatabase = db
	persistence.ActiveDataSourceManager = db.DS
	gdb := db.DS.GormDB(context.Background())

	f := &fixture{db: db}
	f.owner = db.SeedUser(authority.ProjectOwner)
	f.otherOwner = db.SeedUser(authority.ProjectOwner)
	busyUser, busy := db.SeedConsultant(450)
	idleUser, idle := db.SeedConsultant(400)
	f.busy, f.idle = busy, idle
	Expect(gdb.Model(&domain.Consultant{}).Where("id = ?", idle.ID).Update("available", false).Error).To(BeNil())

	f.owned = db.SeedProject(f.owner.ID, 400, 300)
	f.foreign = db.SeedProject(f.otherOwner.ID, 350, 250)
	terminated := db.SeedProject(f.owner.ID, 400, 300)
	Expect(gdb.Model(&domain.Project{}).Where("id = ?", terminated.ID).Update("status", domain.ProjectTerminated).Error).To(BeNil())

	f.busyOwned = db.SeedIntervention(busy.ID, f.owned.ID, "2024-01-01", "", 60, 600)
	f.busyForeign = db.SeedIntervention(busy.ID, f.foreign.ID, "2024-01-01", "2024-01-31", 30, 500)
	f.idleOwned = db.SeedIntervention(idle.ID, f.owned.ID, "2024-01-01", "", 50, 550)
	f.idleLater = db.SeedIntervention(idle.ID, f.foreign.ID, "2024-02-01", "", 70, 500)

	db.SeedTimesheet(f.busyOwned, "2024-01-08", domain.PeriodFullDay, domain.TimesheetValidated)
	db.SeedTimesheet(f.busyOwned, "2024-01-09", domain.PeriodMorning, domain.TimesheetValidated)
	db.SeedTimesheet(f.busyForeign, "2024-01-09", domain.PeriodAfternoon, domain.TimesheetDraft)
	db.SeedTimesheet(f.busyOwned, "2024-01-10", domain.PeriodFullDay, domain.TimesheetSubmitted)
	db.SeedTimesheet(f.busyOwned, "2024-02-05", domain.PeriodFullDay, domain.TimesheetValidated)

	f.busySec = testinfra.BuildSession(busyUser.ID, authority.Consultant)
	f.idleSec = testinfra.BuildSession(idleUser.ID, authority.Consultant)
	f.ownerSec = testinfra.BuildSession(f.owner.ID, authority.ProjectOwner)
	f.adminSec = testinfra.BuildSession(db.SeedUser(authority.Administrator).ID, authority.Administrator)
	f.directeur = testinfra.BuildSession(db.SeedUser(authority.Directeur).ID, authority.Directeur)
	return f
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	common.TimeNow = time.Now
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func auditEntries() []audit.AuditLogEntry {
	var entries []audit.AuditLogEntry
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Find(&entries).Error).To(BeNil())
	return entries
}

func TestConsultantUtilization(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should compute today's allocation and the validated days of the month", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		u, err := dashboard.ConsultantUtilization(f.busy.ID, f.busySec)
		Expect(err).To(BeNil())
		Expect(u.Date).To(Equal(common.MustParseDate("2024-01-10")))
		Expect(u.Allocation).To(Equal(90))
		Expect(u.Free).To(Equal(10))
		Expect(u.ValidatedDays.Equal(decimal.NewFromFloat(1.5))).To(BeTrue())

		u, err = dashboard.ConsultantUtilization(f.idle.ID, f.ownerSec)
		Expect(err).To(BeNil())
		Expect(u.Allocation).To(Equal(50))
		Expect(u.Available).To(BeFalse())
		Expect(u.ValidatedDays.IsZero()).To(BeTrue())
	})

	t.Run("consultants only read their own utilization", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		_, err := dashboard.ConsultantUtilization(f.busy.ID, f.idleSec)
		Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
		_, err = dashboard.ConsultantUtilization(404, f.ownerSec)
		Expect(errors.Is(err, bizerror.ErrNotFound)).To(BeTrue())
	})

	t.Run("should list every consultant the busiest first", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		list, err := dashboard.AllUtilizations(f.adminSec)
		Expect(err).To(BeNil())
		Expect(len(list)).To(Equal(2))
		Expect(list[0].ConsultantID).To(Equal(f.busy.ID))
		Expect(list[0].Allocation).To(Equal(90))
		Expect(list[1].ConsultantID).To(Equal(f.idle.ID))
		Expect(list[1].Allocation).To(Equal(50))

		_, err = dashboard.AllUtilizations(f.ownerSec)
		Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
	})
}

func TestCapacity(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should report available consultants and allocation peaks", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		report, err := dashboard.Capacity(f.adminSec)
		Expect(err).To(BeNil())
		Expect(report.Date).To(Equal(common.MustParseDate("2024-01-10")))
		Expect(report.AvailableConsultants).To(Equal(1))
		Expect(report.Consultants[0].ConsultantID).To(Equal(f.busy.ID))
		Expect(report.AverageUtilization).To(Equal(90))
		Expect(report.ActiveProjects).To(Equal(2))

		Expect(len(report.Conflicts)).To(Equal(1))
		peak := report.Conflicts[0]
		Expect(peak.ConsultantID).To(Equal(f.idle.ID))
		Expect(peak.Date).To(Equal(common.MustParseDate("2024-02-01")))
		Expect(peak.Allocation).To(Equal(120))
		Expect(peak.Interventions).To(Equal([]types.ID{f.idleOwned.ID, f.idleLater.ID}))
	})

	t.Run("is restricted to administrators", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		for _, sec := range []*session.Session{f.busySec, f.ownerSec} {
			_, err := dashboard.Capacity(sec)
			Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
		}
	})
}

func TestRoleStats(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("consultant stats cover the month, ongoing projects and the week", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		stats, err := dashboard.ConsultantStats(f.busySec)
		Expect(err).To(BeNil())
		Expect(stats.ConsultantID).To(Equal(f.busy.ID))
		Expect(stats.Month).To(Equal("2024-01"))
		Expect(stats.ValidatedDays.Equal(decimal.NewFromFloat(1.5))).To(BeTrue())
		Expect(stats.Utilization).To(Equal(90))
		Expect(stats.ProjectCount).To(Equal(2))
		Expect(stats.Projects[0].ProjectID).To(Equal(f.owned.ID))
		Expect(stats.Projects[1].ProjectName).To(Equal(f.foreign.Name))

		Expect(stats.WeekFrom).To(Equal(common.MustParseDate("2024-01-08")))
		Expect(stats.WeekTo).To(Equal(common.MustParseDate("2024-01-14")))
		Expect(len(stats.Week)).To(Equal(4))
		Expect(stats.Week[0].Date).To(Equal(common.MustParseDate("2024-01-08")))
		Expect(stats.Week[0].ProjectName).To(Equal(f.owned.Name))
		Expect(stats.Week[2].Period).To(Equal(domain.PeriodAfternoon))
		Expect(stats.Week[3].Status).To(Equal(domain.TimesheetSubmitted))
	})

	t.Run("consultant stats need a consultant profile", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		_, err := dashboard.ConsultantStats(f.ownerSec)
		Expect(errors.Is(err, bizerror.ErrNotFound)).To(BeTrue())
	})

	t.Run("project owner stats only cover active owned projects", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		stats, err := dashboard.ProjectOwnerStats(f.ownerSec)
		Expect(err).To(BeNil())
		Expect(stats.PendingCount).To(Equal(1))
		Expect(len(stats.Projects)).To(Equal(1))
		Expect(stats.Projects[0].ProjectID).To(Equal(f.owned.ID))
		Expect(stats.Projects[0].ValidatedDays.Equal(decimal.NewFromFloat(2.5))).To(BeTrue())
		Expect(stats.Projects[0].Revenue.Equal(decimal.NewFromInt(1500))).To(BeTrue())

		stats, err = dashboard.ProjectOwnerStats(testinfra.BuildSession(f.otherOwner.ID, authority.ProjectOwner))
		Expect(err).To(BeNil())
		Expect(stats.PendingCount).To(Equal(0))
		Expect(len(stats.Projects)).To(Equal(1))
		Expect(stats.Projects[0].ProjectID).To(Equal(f.foreign.ID))

		_, err = dashboard.ProjectOwnerStats(f.busySec)
		Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
	})

	t.Run("admin stats add the validated revenue without audit", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		stats, err := dashboard.AdminStats(f.adminSec)
		Expect(err).To(BeNil())
		Expect(stats.AvailableConsultants).To(Equal(1))
		Expect(stats.Revenue.Equal(decimal.NewFromInt(1500))).To(BeTrue())
		Expect(auditEntries()).To(BeEmpty())
	})

	t.Run("directeur stats carry the real margins and are audited", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		_, err := dashboard.DirecteurStats(f.adminSec)
		Expect(errors.Is(err, bizerror.ErrRoleForbidden)).To(BeTrue())
		Expect(auditEntries()).To(BeEmpty())

		stats, err := dashboard.DirecteurStats(f.directeur)
		Expect(err).To(BeNil())
		Expect(stats.Revenue.Equal(decimal.NewFromInt(1500))).To(BeTrue())
		Expect(stats.Margins.Totals.Revenue.Equal(decimal.NewFromInt(1500))).To(BeTrue())
		Expect(len(auditEntries())).To(Equal(1))
	})

	t.Run("my dashboard follows the role", func(t *testing.T) {
		defer teardown(t, testDatabase)
		f := setup(t, &testDatabase)

		d, err := dashboard.MyDashboard(f.busySec)
		Expect(err).To(BeNil())
		Expect(d.Role).To(Equal(authority.Consultant))
		Expect(d.Data).To(BeAssignableToTypeOf(&dashboard.ConsultantDashboard{}))

		d, err = dashboard.MyDashboard(f.ownerSec)
		Expect(err).To(BeNil())
		Expect(d.Data).To(BeAssignableToTypeOf(&dashboard.ProjectOwnerDashboard{}))

		d, err = dashboard.MyDashboard(f.directeur)
		Expect(err).To(BeNil())
		Expect(d.Role).To(Equal(authority.Directeur))
		Expect(d.Data).To(BeAssignableToTypeOf(&dashboard.DirecteurDashboard{}))

		_, err = dashboard.MyDashboard(testinfra.BuildSession(f.owner.ID, authority.Role("guest")))
		Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
	})
}
