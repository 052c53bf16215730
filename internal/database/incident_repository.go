package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/google/uuid"
)

// IncidentRepository handles incident report storage and retrieval.
type IncidentRepository struct {
	db *sql.DB
}

// NewIncidentRepository creates a new incident repository.
func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// Create inserts a new incident and returns it with its assigned id.
// Severity is already resolved by the caller; it is immutable after this.
func (r *IncidentRepository) Create(ctx context.Context, incident models.Incident) (models.Incident, error) {
	if incident.ID == "" {
		incident.ID = uuid.New().String()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now()
	}

	var lat, lng *float64
	if incident.Location != nil {
		lat = &incident.Location.Latitude
		lng = &incident.Location.Longitude
	}

	query := `
		INSERT INTO incidents (id, user_id, type, description, lat, lng, image_url, severity, status, timestamp_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		incident.ID,
		incident.UserID,
		incident.Type,
		incident.Description,
		lat,
		lng,
		incident.ImageURL,
		incident.Severity,
		incident.Status,
		incident.Timestamp,
		incident.CreatedAt,
	)
	if err != nil {
		return models.Incident{}, fmt.Errorf("failed to insert incident: %w", err)
	}

	return incident, nil
}

// UpdateStatus sets an incident's status. No transition guard: any status
// may follow any other, including pending -> resolved directly.
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id string, status models.IncidentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE incidents SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update incident status: %w", err)
	}
	return requireRow(result, id)
}

// Delete hard-deletes an incident.
func (r *IncidentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	return requireRow(result, id)
}

// ListAll returns incidents, newest first, up to limit.
func (r *IncidentRepository) ListAll(ctx context.Context, limit int) ([]models.Incident, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, type, description, lat, lng, image_url, severity, status, timestamp_ms, created_at
		FROM incidents
		ORDER BY timestamp_ms DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	return scanIncidents(rows)
}

// CountBySeverity returns a severity -> count breakdown across all incidents.
func (r *IncidentRepository) CountBySeverity(ctx context.Context) (map[models.Severity]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT severity, COUNT(*) FROM incidents GROUP BY severity`)
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents by severity: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Severity]int)
	for rows.Next() {
		var severity models.Severity
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("failed to scan severity count: %w", err)
		}
		counts[severity] = count
	}
	return counts, rows.Err()
}

// CountByType returns a type -> count breakdown for incidents created after
// the given epoch millisecond timestamp.
func (r *IncidentRepository) CountByType(ctx context.Context, sinceMs int64) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM incidents WHERE timestamp_ms > $1 GROUP BY type`, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var incidentType string
		var count int
		if err := rows.Scan(&incidentType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts[incidentType] = count
	}
	return counts, rows.Err()
}

// CountSince reports how many incidents were created after the given epoch
// millisecond timestamp.
func (r *IncidentRepository) CountSince(ctx context.Context, sinceMs int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM incidents WHERE timestamp_ms > $1`, sinceMs,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count incidents since: %w", err)
	}
	return count, nil
}

// Count reports the total number of incidents.
func (r *IncidentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return count, nil
}

func scanIncidents(rows *sql.Rows) ([]models.Incident, error) {
	incidents := []models.Incident{}
	for rows.Next() {
		var incident models.Incident
		var lat, lng sql.NullFloat64
		var imageURL sql.NullString

		err := rows.Scan(
			&incident.ID,
			&incident.UserID,
			&incident.Type,
			&incident.Description,
			&lat,
			&lng,
			&imageURL,
			&incident.Severity,
			&incident.Status,
			&incident.Timestamp,
			&incident.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}

		if lat.Valid && lng.Valid {
			incident.Location = &models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		incident.ImageURL = imageURL.String

		incidents = append(incidents, incident)
	}
	return incidents, rows.Err()
}
