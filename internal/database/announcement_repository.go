package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/google/uuid"
)

// AnnouncementRepository handles campus announcement storage.
type AnnouncementRepository struct {
	db *sql.DB
}

// NewAnnouncementRepository creates a new announcement repository.
func NewAnnouncementRepository(db *sql.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts a new announcement and returns it with its assigned id.
func (r *AnnouncementRepository) Create(ctx context.Context, ann models.Announcement) (models.Announcement, error) {
	if ann.ID == "" {
		ann.ID = uuid.New().String()
	}
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO announcements (id, title, message, priority, timestamp_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		ann.ID,
		ann.Title,
		ann.Message,
		ann.Priority,
		ann.Timestamp,
		ann.CreatedAt,
	)
	if err != nil {
		return models.Announcement{}, fmt.Errorf("failed to insert announcement: %w", err)
	}

	return ann, nil
}

// ListRecent returns the most recent announcements, newest first.
func (r *AnnouncementRepository) ListRecent(ctx context.Context, limit int) ([]models.Announcement, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, title, message, priority, timestamp_ms, created_at
		FROM announcements
		ORDER BY timestamp_ms DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	announcements := []models.Announcement{}
	for rows.Next() {
		var ann models.Announcement
		err := rows.Scan(
			&ann.ID,
			&ann.Title,
			&ann.Message,
			&ann.Priority,
			&ann.Timestamp,
			&ann.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		announcements = append(announcements, ann)
	}
	return announcements, rows.Err()
}

// Delete hard-deletes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return requireRow(result, id)
}
