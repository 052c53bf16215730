package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/google/uuid"
)

// UserRepository handles account storage and profile lookups.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account and returns it with its assigned id.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	prefsJSON, err := json.Marshal(user.Preferences)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to marshal preferences: %w", err)
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, preferences, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		prefsJSON,
		user.CreatedAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// GetByEmail returns the account with the given email, or nil when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

// GetByID returns the account with the given id, or nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, preferences, created_at
		FROM users ` + where + ` LIMIT 1`

	var user models.User
	var prefsJSON []byte
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&prefsJSON,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &user.Preferences); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
	}

	return &user, nil
}

// ListAll returns accounts, newest first, up to limit.
func (r *UserRepository) ListAll(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, name, email, password_hash, role, preferences, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var prefsJSON []byte
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&prefsJSON,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if len(prefsJSON) > 0 {
			if err := json.Unmarshal(prefsJSON, &user.Preferences); err != nil {
				return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
			}
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateRole changes an account's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return requireRow(result, id)
}

// UpdateRoleByEmail changes the role of the account with the given email.
func (r *UserRepository) UpdateRoleByEmail(ctx context.Context, email string, role models.Role) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE email = $2`, role, email)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return requireRow(result, email)
}

// UpdatePreferences replaces an account's accessibility preferences.
func (r *UserRepository) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) error {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `UPDATE users SET preferences = $1 WHERE id = $2`, prefsJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return requireRow(result, id)
}

// ProfilesByID returns the display profile for every account, keyed by id.
// Used by the ranking layer to enrich alerts and incidents.
func (r *UserRepository) ProfilesByID(ctx context.Context) (map[string]models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]models.Profile)
	for rows.Next() {
		var profile models.Profile
		if err := rows.Scan(&profile.ID, &profile.Name, &profile.Email); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles[profile.ID] = profile
	}
	return profiles, rows.Err()
}

// Count reports the total number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
