package assistant

import (
	"context"
	"errors"
	"staffing/domain/dashboard"
	"staffing/domain/margin"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func TestRespond(t *testing.T) {
	RegisterTestingT(t)

	defer Configure(nil, 2, 5, 10*time.Second)
	intent := Intent{Type: IntentProjectQuery}
	data := &ProjectList{Count: 2}

	t.Run("should use the model reply", func(t *testing.T) {
		g := &fakeGenerator{reply: "Vous avez deux projets actifs."}
		Configure(g, 10, 10, time.Second)
		Expect(respond(context.Background(), "mes projets", intent, data)).To(Equal("Vous avez deux projets actifs."))
		Expect(len(g.prompts)).To(Equal(1))
		Expect(g.prompts[0]).To(ContainSubstring("Message utilisateur: mes projets"))
		Expect(g.prompts[0]).To(ContainSubstring("Intent détecté: PROJECT_QUERY"))
		Expect(g.prompts[0]).To(ContainSubstring(`"count":2`))
	})

	t.Run("should fall back to the template when the model fails", func(t *testing.T) {
		Configure(&fakeGenerator{err: errors.New("quota exceeded")}, 10, 10, time.Second)
		Expect(respond(context.Background(), "mes projets", intent, data)).To(Equal("Vous avez 2 projet(s)."))
	})

	t.Run("should fall back to the template when rate limited", func(t *testing.T) {
		g := &fakeGenerator{reply: "ok"}
		Configure(g, 10, 1, time.Second)
		ActiveLimiter = rate.NewLimiter(rate.Limit(0.001), 1)
		Expect(respond(context.Background(), "a", intent, data)).To(Equal("ok"))
		Expect(respond(context.Background(), "b", intent, data)).To(Equal("Vous avez 2 projet(s)."))
		Expect(len(g.prompts)).To(Equal(1))
	})

	t.Run("should use the template without a model", func(t *testing.T) {
		Configure(nil, 10, 10, time.Second)
		Expect(respond(context.Background(), "a", intent, data)).To(Equal("Vous avez 2 projet(s)."))
	})

	t.Run("should template every result", func(t *testing.T) {
		Expect(fallbackReply(intent, &ActionFailure{Error: "forbidden"})).To(Equal("Erreur : forbidden"))
		Expect(fallbackReply(intent, &TimesheetSummary{TotalDays: decimal.RequireFromString("2.5")})).
			To(Equal("Vous avez saisi 2.5 jour(s) sur la période demandée."))
		Expect(fallbackReply(intent, &ConsultantList{Count: 3})).To(Equal("Il y a 3 consultant(s) disponible(s)."))
		Expect(fallbackReply(intent, &PendingList{Count: 1})).To(Equal("Il y a 1 timesheet(s) en attente de validation."))
		Expect(fallbackReply(intent, &Guidance{Message: "hint"})).To(Equal("hint"))
		Expect(fallbackReply(intent, helpInfo("consultant"))).To(Equal("Voici ce que je peux faire pour vous :"))
		Expect(strings.HasPrefix(fallbackReply(intent, nil), "Demande")).To(BeTrue())
	})

	t.Run("should template every dashboard", func(t *testing.T) {
		intent := Intent{Type: IntentDashboardQuery}
		mine := &dashboard.Dashboard{Role: "consultant", Data: &dashboard.ConsultantDashboard{
			ValidatedDays: decimal.RequireFromString("1.5"), ProjectCount: 2, Utilization: 90}}
		Expect(fallbackReply(intent, mine)).
			To(Equal("Ce mois-ci : 1.5 jour(s) validé(s), 2 projet(s) en cours, taux d'utilisation 90%."))

		owner := &dashboard.Dashboard{Data: &dashboard.ProjectOwnerDashboard{PendingCount: 4}}
		Expect(fallbackReply(intent, owner)).To(Equal("Il y a 4 timesheet(s) en attente de validation sur 0 projet(s) actif(s)."))

		capacity := dashboard.CapacityReport{AvailableConsultants: 3, AverageUtilization: 70, ActiveProjects: 2}
		admin := &dashboard.Dashboard{Data: &dashboard.AdminDashboard{CapacityReport: capacity}}
		Expect(fallbackReply(intent, admin)).To(Equal("3 consultant(s) disponible(s), taux d'utilisation moyen 70%, 2 projet(s) actif(s)."))

		report := &margin.ComparisonReport{Totals: margin.ComparisonTotals{MarginCJR: decimal.NewFromInt(1200)}}
		directeur := &dashboard.Dashboard{Data: &dashboard.DirecteurDashboard{
			AdminDashboard: dashboard.AdminDashboard{CapacityReport: capacity}, Margins: report}}
		Expect(fallbackReply(intent, directeur)).To(HaveSuffix(" Marge CJR totale : 1200."))
		Expect(fallbackReply(intent, &dashboard.Dashboard{})).To(Equal("Demande traitée."))
	})
}
