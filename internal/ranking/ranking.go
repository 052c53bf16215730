// Package ranking computes presentation order for alerts and incidents and
// joins them with display-only profile data. Scores are never re-derived
// here; only the sort is recomputed on each fetch.
package ranking

import (
	"sort"

	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/campuspulse/campuspulse/internal/triage"
)

// RankAlerts orders alerts by urgency score descending, tie-broken by
// timestamp descending. The sort is stable: equal-key alerts keep their
// relative input order.
func RankAlerts(alerts []models.EnrichedAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].UrgencyScore != alerts[j].UrgencyScore {
			return alerts[i].UrgencyScore > alerts[j].UrgencyScore
		}
		return alerts[i].Timestamp > alerts[j].Timestamp
	})
}

// RankIncidents orders incidents by severity rank descending, tie-broken by
// timestamp descending, stable.
func RankIncidents(incidents []models.EnrichedIncident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		ri, rj := triage.SeverityRank(incidents[i].Severity), triage.SeverityRank(incidents[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return incidents[i].Timestamp > incidents[j].Timestamp
	})
}

// EnrichAlerts joins alerts with reporter profiles. A missing profile never
// fails the batch; the record gets placeholder display values instead.
func EnrichAlerts(alerts []models.Alert, profiles map[string]models.Profile) []models.EnrichedAlert {
	enriched := make([]models.EnrichedAlert, 0, len(alerts))
	for _, alert := range alerts {
		name, email := profileDisplay(profiles, alert.UserID)
		enriched = append(enriched, models.EnrichedAlert{
			Alert:     alert,
			UserName:  name,
			UserEmail: email,
		})
	}
	return enriched
}

// EnrichIncidents joins incidents with reporter profiles, substituting
// placeholders for missing accounts.
func EnrichIncidents(incidents []models.Incident, profiles map[string]models.Profile) []models.EnrichedIncident {
	enriched := make([]models.EnrichedIncident, 0, len(incidents))
	for _, incident := range incidents {
		name, email := profileDisplay(profiles, incident.UserID)
		enriched = append(enriched, models.EnrichedIncident{
			Incident:  incident,
			UserName:  name,
			UserEmail: email,
		})
	}
	return enriched
}

func profileDisplay(profiles map[string]models.Profile, userID string) (string, string) {
	profile, ok := profiles[userID]
	if !ok {
		return models.UnknownUserName, models.UnknownUserEmail
	}
	name := profile.Name
	if name == "" {
		name = models.UnknownUserName
	}
	email := profile.Email
	if email == "" {
		email = models.UnknownUserEmail
	}
	return name, email
}
