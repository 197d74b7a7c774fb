package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"staffing/common"
	"staffing/domain/dashboard"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const systemPrompt = `Tu es un assistant virtuel pour une application de staffing ESN.
Ton rôle est d'aider les utilisateurs avec leurs timesheets, projets, et consultants.
Réponds de manière concise, naturelle et professionnelle en français.
Ne dépasse pas 2-3 phrases.`

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ActiveGenerator is nil when no model is configured, replies are then templated.
	ActiveGenerator Generator
	ActiveLimiter = rate.NewLimiter(rate.Limit(2), 5)
	ReplyTimeout  = 10 * time.Second
)

// Configure installs the model used for replies and the rate it may be called at.
func Configure(g Generator, perSecond float64, burst int, timeout time.Duration) {
	ActiveGenerator = g
	ActiveLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	if timeout > 0 {
		ReplyTimeout = timeout
	}
}

func buildPrompt(message string, intent Intent, data interface{}) string {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	return fmt.Sprintf("%s\n\nMessage utilisateur: %s\nIntent détecté: %s\nDonnées: %s\n\nRéponds de manière naturelle et concise.",
		systemPrompt, message, intent.Type, payload)
}

// respond asks the model for a reply and degrades to the templated one on any failure.
func respond(ctx context.Context, message string, intent Intent, data interface{}) string {
	if ActiveGenerator == nil {
		return fallbackReply(intent, data)
	}
	if !ActiveLimiter.Allow() {
		common.Log.WithField("intent", intent.Type).Info("assistant rate limited, using templated reply")
		return fallbackReply(intent, data)
	}

	ctx, cancel := context.WithTimeout(ctx, ReplyTimeout)
	defer cancel()
	reply, err := ActiveGenerator.Generate(ctx, buildPrompt(message, intent, data))
	if err != nil {
		common.Log.WithFields(logrus.Fields{"intent": intent.Type}).Warn("assistant model call failed: ", err)
		return fallbackReply(intent, data)
	}
	return reply
}

func fallbackReply(intent Intent, data interface{}) string {
	switch v := data.(type) {
	case *ActionFailure:
		return "Erreur : " + v.Error
	case *TimesheetSummary:
		return fmt.Sprintf("Vous avez saisi %s jour(s) sur la période demandée.", v.TotalDays.String())
	case *ProjectList:
		return fmt.Sprintf("Vous avez %d projet(s).", v.Count)
	case *ConsultantList:
		return fmt.Sprintf("Il y a %d consultant(s) disponible(s).", v.Count)
	case *PendingList:
		return fmt.Sprintf("Il y a %d timesheet(s) en attente de validation.", v.Count)
	case *dashboard.Dashboard:
		return dashboardReply(v.Data)
	case *HelpInfo:
		return v.Message
	case *Guidance:
		return v.Message
	}
	return "Demande traitée."
}

func dashboardReply(data interface{}) string {
	switch v := data.(type) {
	case *dashboard.ConsultantDashboard:
		return fmt.Sprintf("Ce mois-ci : %s jour(s) validé(s), %d projet(s) en cours, taux d'utilisation %d%%.",
			v.ValidatedDays.String(), v.ProjectCount, v.Utilization)
	case *dashboard.ProjectOwnerDashboard:
		return fmt.Sprintf("Il y a %d timesheet(s) en attente de validation sur %d projet(s) actif(s).",
			v.PendingCount, len(v.Projects))
	case *dashboard.AdminDashboard:
		return capacityReply(&v.CapacityReport)
	case *dashboard.DirecteurDashboard:
		return capacityReply(&v.CapacityReport) + fmt.Sprintf(" Marge CJR totale : %s.", v.Margins.Totals.MarginCJR.String())
	}
	return "Demande traitée."
}

func capacityReply(c *dashboard.CapacityReport) string {
	return fmt.Sprintf("%d consultant(s) disponible(s), taux d'utilisation moyen %d%%, %d projet(s) actif(s).",
		c.AvailableConsultants, c.AverageUtilization, c.ActiveProjects)
}
