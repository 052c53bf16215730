package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound reports that a write targeted a record that does not exist.
var ErrNotFound = errors.New("record not found")

// AlertRepository handles SOS alert storage and retrieval.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new SOS alert repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert and returns it with its assigned id. The
// urgency score is written afterwards via SetUrgency; creation and scoring
// are deliberately two phases because the score depends on the set of active
// alerts that exists after this insert.
func (r *AlertRepository) Create(ctx context.Context, alert models.Alert) (models.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	var lat, lng *float64
	if alert.Location != nil {
		lat = &alert.Location.Latitude
		lng = &alert.Location.Longitude
	}

	query := `
		INSERT INTO sos_alerts (id, user_id, lat, lng, timestamp_ms, status, urgency_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.UserID,
		lat,
		lng,
		alert.Timestamp,
		alert.Status,
		alert.UrgencyScore,
		alert.CreatedAt,
	)
	if err != nil {
		return models.Alert{}, fmt.Errorf("failed to insert alert: %w", err)
	}

	return alert, nil
}

// SetUrgency patches the urgency score onto an existing alert. Called once
// per alert, right after creation.
func (r *AlertRepository) SetUrgency(ctx context.Context, id string, score int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sos_alerts SET urgency_score = $1 WHERE id = $2`, score, id)
	if err != nil {
		return fmt.Errorf("failed to set urgency: %w", err)
	}
	return requireRow(result, id)
}

// UpdateStatus sets an alert's status. Repeated updates to the same value
// are harmless.
func (r *AlertRepository) UpdateStatus(ctx context.Context, id string, status models.AlertStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sos_alerts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	return requireRow(result, id)
}

// Delete hard-deletes an alert.
func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sos_alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return requireRow(result, id)
}

// ListAll returns alerts of every status, newest first, up to limit.
func (r *AlertRepository) ListAll(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, lat, lng, timestamp_ms, status, urgency_score, created_at
		FROM sos_alerts
		ORDER BY timestamp_ms DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// ListByStatus returns alerts with the given status, newest first.
func (r *AlertRepository) ListByStatus(ctx context.Context, status models.AlertStatus) ([]models.Alert, error) {
	query := `
		SELECT id, user_id, lat, lng, timestamp_ms, status, urgency_score, created_at
		FROM sos_alerts
		WHERE status = $1
		ORDER BY timestamp_ms DESC
	`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts by status: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// CountActiveByUser reports how many active alerts a user currently has.
// This is the repeat-trigger signal for urgency scoring; it is a snapshot
// read and may race with concurrent submissions, which is acceptable.
func (r *AlertRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sos_alerts WHERE user_id = $1 AND status = $2`,
		userID, models.AlertStatusActive,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active alerts: %w", err)
	}
	return count, nil
}

// CountActive reports the total number of active alerts.
func (r *AlertRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sos_alerts WHERE status = $1`, models.AlertStatusActive,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active alerts: %w", err)
	}
	return count, nil
}

// CountSince reports how many alerts were created after the given epoch
// millisecond timestamp.
func (r *AlertRepository) CountSince(ctx context.Context, sinceMs int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sos_alerts WHERE timestamp_ms > $1`, sinceMs,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts since: %w", err)
	}
	return count, nil
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	alerts := []models.Alert{}
	for rows.Next() {
		var alert models.Alert
		var lat, lng sql.NullFloat64

		err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&lat,
			&lng,
			&alert.Timestamp,
			&alert.Status,
			&alert.UrgencyScore,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		if lat.Valid && lng.Valid {
			alert.Location = &models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
		}

		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
