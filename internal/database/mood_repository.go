package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/google/uuid"
)

// MoodRepository handles wellbeing check-in storage and retrieval.
type MoodRepository struct {
	db *sql.DB
}

// NewMoodRepository creates a new mood repository.
func NewMoodRepository(db *sql.DB) *MoodRepository {
	return &MoodRepository{db: db}
}

// Create inserts a new mood entry and returns it with its assigned id.
func (r *MoodRepository) Create(ctx context.Context, entry models.MoodEntry) (models.MoodEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO mood_entries (id, user_id, mood, note, timestamp_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Mood,
		entry.Note,
		entry.Timestamp,
		entry.CreatedAt,
	)
	if err != nil {
		return models.MoodEntry{}, fmt.Errorf("failed to insert mood entry: %w", err)
	}

	return entry, nil
}

// ListByUser returns a user's mood entries, newest first, up to limit.
func (r *MoodRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	if limit <= 0 {
		limit = 7
	}

	query := `
		SELECT id, user_id, mood, note, timestamp_ms, created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY timestamp_ms DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries: %w", err)
	}
	defer rows.Close()

	return scanMoodEntries(rows)
}

// ListSince returns every mood entry created after the given epoch
// millisecond timestamp, oldest first. Used for trend aggregation.
func (r *MoodRepository) ListSince(ctx context.Context, sinceMs int64) ([]models.MoodEntry, error) {
	query := `
		SELECT id, user_id, mood, note, timestamp_ms, created_at
		FROM mood_entries
		WHERE timestamp_ms >= $1
		ORDER BY timestamp_ms ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries since: %w", err)
	}
	defer rows.Close()

	return scanMoodEntries(rows)
}

func scanMoodEntries(rows *sql.Rows) ([]models.MoodEntry, error) {
	entries := []models.MoodEntry{}
	for rows.Next() {
		var entry models.MoodEntry
		var note sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Mood,
			&note,
			&entry.Timestamp,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entry.Note = note.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
