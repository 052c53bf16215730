package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuspulse/campuspulse/internal/auth"
	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/campuspulse/campuspulse/internal/triage"
)

type countingCounter struct {
	n int
}

func (c *countingCounter) ObserveSOS() {
	c.n++
}

func newSOSHandler(alerts *fakeAlertStore, users *fakeUserStore, classifier triage.Classifier, clk fixedClock) (*SOSHandler, *countingCounter) {
	logger := testLogger()
	resolver := triage.NewUrgencyResolver(classifier, clk, logger)
	counter := &countingCounter{}
	return NewSOSHandler(alerts, users, resolver, clk, counter, logger), counter
}

func authedRequest(method, target string, body []byte, identity auth.Identity) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
}

func TestTriggerCreatesThenScoresThenPatches(t *testing.T) {
	alerts := &fakeAlertStore{}
	handler, counter := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("9"), clockAtHour(14))

	body := []byte(`{"location": {"lat": 40.1, "lng": -88.2}}`)
	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodPost, "/api/sos", body, auth.Identity{UserID: "u1", Role: models.RoleStudent}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	wantOps := []string{"create", "count_active", "set_urgency:9"}
	if len(alerts.ops) != len(wantOps) {
		t.Fatalf("expected ops %v, got %v", wantOps, alerts.ops)
	}
	for i, op := range wantOps {
		if alerts.ops[i] != op {
			t.Errorf("op %d: expected %q, got %q", i, op, alerts.ops[i])
		}
	}

	var resp TriggerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success flag set")
	}
	if resp.UrgencyScore != 9 || resp.Alert.UrgencyScore != 9 {
		t.Errorf("expected urgency 9, got %d/%d", resp.UrgencyScore, resp.Alert.UrgencyScore)
	}
	if resp.Alert.Status != models.AlertStatusActive {
		t.Errorf("expected status active, got %q", resp.Alert.Status)
	}
	if resp.Alert.Timestamp != clockAtHour(14).Now().UnixMilli() {
		t.Errorf("expected timestamp from the injected clock, got %d", resp.Alert.Timestamp)
	}
	if counter.n != 1 {
		t.Errorf("expected 1 counted alert, got %d", counter.n)
	}
}

func TestTriggerSurvivesClassifierFailure(t *testing.T) {
	alerts := &fakeAlertStore{}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewFailingClassifier("model offline"), clockAtHour(2))

	body := []byte(`{"location": {"lat": 40.1, "lng": -88.2}}`)
	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodPost, "/api/sos", body, auth.Identity{UserID: "u1"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite classifier failure, got %d", rec.Code)
	}

	var resp TriggerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	// Heuristic path: base 5, nighttime +3, has location.
	if resp.UrgencyScore != 8 {
		t.Errorf("expected heuristic score 8, got %d", resp.UrgencyScore)
	}
}

func TestTriggerRepeatBumpCountsOtherAlertsOnly(t *testing.T) {
	tests := []struct {
		name        string
		priorActive int
		wantScore   int
	}{
		{"first alert", 0, 5},
		{"second alert", 1, 5},
		{"third alert", 2, 6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alerts := &fakeAlertStore{}
			for i := 0; i < tc.priorActive; i++ {
				alerts.alerts = append(alerts.alerts, models.Alert{
					ID:     fmt.Sprintf("prior-%d", i),
					UserID: "u1",
					Status: models.AlertStatusActive,
				})
			}
			handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewFailingClassifier("model offline"), clockAtHour(14))

			body := []byte(`{"location": {"lat": 40.1, "lng": -88.2}}`)
			rec := httptest.NewRecorder()
			handler.HandleSOS(rec, authedRequest(http.MethodPost, "/api/sos", body, auth.Identity{UserID: "u1"}))

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d", rec.Code)
			}

			var resp TriggerResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			// The count taken after the insert sees the new alert too, so
			// only earlier alerts may earn the repeat bump.
			if resp.UrgencyScore != tc.wantScore {
				t.Errorf("expected heuristic score %d, got %d", tc.wantScore, resp.UrgencyScore)
			}
		})
	}
}

func TestTriggerSurvivesLostScorePatch(t *testing.T) {
	alerts := &fakeAlertStore{setErr: errors.New("connection reset")}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("7"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodPost, "/api/sos", nil, auth.Identity{UserID: "u1"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite failed score patch, got %d", rec.Code)
	}
	if len(alerts.alerts) != 1 {
		t.Fatalf("expected the alert to exist, got %d alerts", len(alerts.alerts))
	}
}

func TestTriggerWithoutBody(t *testing.T) {
	alerts := &fakeAlertStore{}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodPost, "/api/sos", nil, auth.Identity{UserID: "u1"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a bodyless trigger, got %d", rec.Code)
	}
	if alerts.alerts[0].Location != nil {
		t.Error("expected no location on a bodyless trigger")
	}
}

func TestTriggerRequiresIdentity(t *testing.T) {
	handler, _ := newSOSHandler(&fakeAlertStore{}, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, httptest.NewRequest(http.MethodPost, "/api/sos", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestListDegradesOnStoreFailure(t *testing.T) {
	alerts := &fakeAlertStore{listErr: errors.New("pq: connection refused")}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodGet, "/api/sos", nil, auth.Identity{UserID: "u1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on degraded read, got %d", rec.Code)
	}

	var resp AlertListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Alerts) != 0 {
		t.Errorf("expected empty alert list, got %d", len(resp.Alerts))
	}
	if resp.StoreError == "" {
		t.Error("expected storeError to carry the failure message")
	}
}

func TestListRanksAndEnriches(t *testing.T) {
	alerts := &fakeAlertStore{alerts: []models.Alert{
		{ID: "a", UserID: "u1", UrgencyScore: 5, Timestamp: 100, Status: models.AlertStatusActive},
		{ID: "b", UserID: "ghost", UrgencyScore: 8, Timestamp: 50, Status: models.AlertStatusActive},
		{ID: "c", UserID: "u1", UrgencyScore: 8, Timestamp: 90, Status: models.AlertStatusActive},
	}}
	users := &fakeUserStore{users: []models.User{
		{ID: "u1", Name: "Ada", Email: "ada@campus.edu"},
	}}
	handler, _ := newSOSHandler(alerts, users, triage.NewMockClassifier("6"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodGet, "/api/sos", nil, auth.Identity{UserID: "u1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp AlertListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	wantOrder := []string{"c", "b", "a"}
	for i, id := range wantOrder {
		if resp.Alerts[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, resp.Alerts[i].ID)
		}
	}
	if resp.Alerts[0].UserName != "Ada" {
		t.Errorf("expected enriched name Ada, got %q", resp.Alerts[0].UserName)
	}
	if resp.Alerts[1].UserName != "Unknown User" || resp.Alerts[1].UserEmail != "No email" {
		t.Errorf("expected placeholder profile for unknown reporter, got %q/%q",
			resp.Alerts[1].UserName, resp.Alerts[1].UserEmail)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	alerts := &fakeAlertStore{alerts: []models.Alert{
		{ID: "a", UserID: "u1", Status: models.AlertStatusActive, Timestamp: 100},
		{ID: "b", UserID: "u1", Status: models.AlertStatusHandled, Timestamp: 90},
	}}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodGet, "/api/sos?status=active", nil, auth.Identity{UserID: "u1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp AlertListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Alerts) != 1 || resp.Alerts[0].ID != "a" {
		t.Errorf("expected only the active alert, got %v", resp.Alerts)
	}

	rec = httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodGet, "/api/sos?status=snoozed", nil, auth.Identity{UserID: "u1"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status filter, got %d", rec.Code)
	}
}

func TestListSurvivesProfileLookupFailure(t *testing.T) {
	alerts := &fakeAlertStore{alerts: []models.Alert{
		{ID: "a", UserID: "u1", UrgencyScore: 5, Timestamp: 100, Status: models.AlertStatusActive},
	}}
	users := &fakeUserStore{profilesErr: errors.New("pq: relation missing")}
	handler, _ := newSOSHandler(alerts, users, triage.NewMockClassifier("6"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOS(rec, authedRequest(http.MethodGet, "/api/sos", nil, auth.Identity{UserID: "u1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp AlertListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(resp.Alerts))
	}
	if resp.Alerts[0].UserName != "Unknown User" {
		t.Errorf("expected placeholder name, got %q", resp.Alerts[0].UserName)
	}
}

func TestUpdateAlertStatus(t *testing.T) {
	alerts := &fakeAlertStore{alerts: []models.Alert{
		{ID: "a1", UserID: "u1", Status: models.AlertStatusActive},
	}}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	body := []byte(`{"status": "handled"}`)
	rec := httptest.NewRecorder()
	handler.HandleSOSByID(rec, authedRequest(http.MethodPatch, "/api/sos/a1/status", body, auth.Identity{UserID: "admin", Role: models.RoleAdmin}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if alerts.alerts[0].Status != models.AlertStatusHandled {
		t.Errorf("expected handled, got %q", alerts.alerts[0].Status)
	}

	// Marking handled again is idempotent.
	rec = httptest.NewRecorder()
	handler.HandleSOSByID(rec, authedRequest(http.MethodPatch, "/api/sos/a1/status", body, auth.Identity{UserID: "admin", Role: models.RoleAdmin}))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 on repeated transition, got %d", rec.Code)
	}
}

func TestUpdateAlertStatusRejectsInvalidValue(t *testing.T) {
	alerts := &fakeAlertStore{alerts: []models.Alert{
		{ID: "a1", Status: models.AlertStatusActive},
	}}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	body := []byte(`{"status": "snoozed"}`)
	rec := httptest.NewRecorder()
	handler.HandleSOSByID(rec, authedRequest(http.MethodPatch, "/api/sos/a1/status", body, auth.Identity{Role: models.RoleAdmin}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", rec.Code)
	}
	if alerts.alerts[0].Status != models.AlertStatusActive {
		t.Errorf("expected status unchanged, got %q", alerts.alerts[0].Status)
	}
}

func TestUpdateAlertStatusUnknownID(t *testing.T) {
	handler, _ := newSOSHandler(&fakeAlertStore{}, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	body := []byte(`{"status": "handled"}`)
	rec := httptest.NewRecorder()
	handler.HandleSOSByID(rec, authedRequest(http.MethodPatch, "/api/sos/nope/status", body, auth.Identity{Role: models.RoleAdmin}))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown alert, got %d", rec.Code)
	}
}

func TestDeleteAlert(t *testing.T) {
	alerts := &fakeAlertStore{alerts: []models.Alert{{ID: "a1"}}}
	handler, _ := newSOSHandler(alerts, &fakeUserStore{}, triage.NewMockClassifier("6"), clockAtHour(14))

	rec := httptest.NewRecorder()
	handler.HandleSOSByID(rec, authedRequest(http.MethodDelete, "/api/sos/a1", nil, auth.Identity{Role: models.RoleAdmin}))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(alerts.alerts) != 0 {
		t.Errorf("expected alert removed, got %d remaining", len(alerts.alerts))
	}

	rec = httptest.NewRecorder()
	handler.HandleSOSByID(rec, authedRequest(http.MethodDelete, "/api/sos/a1", nil, auth.Identity{Role: models.RoleAdmin}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for already-deleted alert, got %d", rec.Code)
	}
}
