package ranking

import (
	"testing"

	"github.com/campuspulse/campuspulse/internal/models"
)

func alert(id string, score int, ts int64) models.EnrichedAlert {
	return models.EnrichedAlert{
		Alert: models.Alert{ID: id, UrgencyScore: score, Timestamp: ts},
	}
}

func TestRankAlertsOrdersByScoreThenRecency(t *testing.T) {
	alerts := []models.EnrichedAlert{
		alert("A", 5, 100),
		alert("B", 8, 50),
		alert("C", 8, 90),
	}

	RankAlerts(alerts)

	want := []string{"C", "B", "A"}
	for i, id := range want {
		if alerts[i].ID != id {
			t.Fatalf("position %d = %s, want %s (full order: %v)", i, alerts[i].ID, id, ids(alerts))
		}
	}
}

func TestRankAlertsIsStable(t *testing.T) {
	// Identical score and timestamp keep input order.
	alerts := []models.EnrichedAlert{
		alert("first", 7, 100),
		alert("second", 7, 100),
		alert("third", 7, 100),
	}

	RankAlerts(alerts)

	want := []string{"first", "second", "third"}
	for i, id := range want {
		if alerts[i].ID != id {
			t.Fatalf("stable sort violated: position %d = %s, want %s", i, alerts[i].ID, id)
		}
	}
}

func TestRankIncidentsOrdersBySeverityThenRecency(t *testing.T) {
	incidents := []models.EnrichedIncident{
		{Incident: models.Incident{ID: "low-new", Severity: models.SeverityLow, Timestamp: 500}},
		{Incident: models.Incident{ID: "crit-old", Severity: models.SeverityCritical, Timestamp: 10}},
		{Incident: models.Incident{ID: "high-1", Severity: models.SeverityHigh, Timestamp: 200}},
		{Incident: models.Incident{ID: "high-2", Severity: models.SeverityHigh, Timestamp: 300}},
	}

	RankIncidents(incidents)

	want := []string{"crit-old", "high-2", "high-1", "low-new"}
	for i, id := range want {
		if incidents[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, incidents[i].ID, id)
		}
	}
}

func TestEnrichAlertsJoinsProfiles(t *testing.T) {
	alerts := []models.Alert{
		{ID: "a1", UserID: "u1"},
		{ID: "a2", UserID: "u2"},
	}
	profiles := map[string]models.Profile{
		"u1": {ID: "u1", Name: "Priya", Email: "priya@campus.edu"},
		"u2": {ID: "u2", Name: "Arun", Email: "arun@campus.edu"},
	}

	enriched := EnrichAlerts(alerts, profiles)

	if len(enriched) != 2 {
		t.Fatalf("expected 2 enriched alerts, got %d", len(enriched))
	}
	if enriched[0].UserName != "Priya" || enriched[0].UserEmail != "priya@campus.edu" {
		t.Errorf("unexpected enrichment: %+v", enriched[0])
	}
}

func TestEnrichAlertsSubstitutesMissingProfile(t *testing.T) {
	alerts := []models.Alert{
		{ID: "a1", UserID: "known"},
		{ID: "a2", UserID: "ghost"},
	}
	profiles := map[string]models.Profile{
		"known": {ID: "known", Name: "Priya", Email: "priya@campus.edu"},
	}

	enriched := EnrichAlerts(alerts, profiles)

	if enriched[0].UserName != "Priya" {
		t.Errorf("known profile affected by missing one: %+v", enriched[0])
	}
	if enriched[1].UserName != models.UnknownUserName || enriched[1].UserEmail != models.UnknownUserEmail {
		t.Errorf("missing profile not substituted: %+v", enriched[1])
	}
}

func TestEnrichIncidentsSubstitutesEmptyFields(t *testing.T) {
	incidents := []models.Incident{{ID: "i1", UserID: "u1"}}
	profiles := map[string]models.Profile{
		"u1": {ID: "u1", Name: "", Email: ""},
	}

	enriched := EnrichIncidents(incidents, profiles)

	if enriched[0].UserName != models.UnknownUserName {
		t.Errorf("empty name not substituted: %q", enriched[0].UserName)
	}
	if enriched[0].UserEmail != models.UnknownUserEmail {
		t.Errorf("empty email not substituted: %q", enriched[0].UserEmail)
	}
}

func ids(alerts []models.EnrichedAlert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}
