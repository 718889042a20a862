// Package profile persists user risk profiles and risk limits in SQLite.
// Both are stored as JSON documents; the schema only indexes identity
// columns, so profile shape changes never need a migration.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/database"
	"github.com/miowsis/analytics/internal/domain"
)

// Repository implements domain.ProfileStore on SQLite
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new profile repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "profile").Logger(),
	}
}

// GetProfile returns the user's risk profile, or nil when none exists
func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.RiskProfile, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		"SELECT data FROM risk_profiles WHERE user_id = ?", userID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get risk profile: %w", err)
	}

	var profile domain.RiskProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode risk profile: %w", err)
	}
	profile.UserID = userID
	return &profile, nil
}

// SaveProfile creates or replaces the user's risk profile
func (r *Repository) SaveProfile(ctx context.Context, profile *domain.RiskProfile) error {
	if profile.UserID == "" {
		return fmt.Errorf("risk profile has no user id")
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode risk profile: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO risk_profiles (user_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		profile.UserID, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save risk profile: %w", err)
	}

	r.log.Debug().Str("user_id", profile.UserID).Msg("risk profile saved")
	return nil
}

// GetLimits returns the user's risk limits, optionally only enabled ones
func (r *Repository) GetLimits(ctx context.Context, userID string, enabledOnly bool) ([]domain.RiskLimit, error) {
	query := "SELECT id, data, enabled FROM risk_limits WHERE user_id = ?"
	if enabledOnly {
		query += " AND enabled = 1"
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get risk limits: %w", err)
	}
	defer rows.Close()

	var limits []domain.RiskLimit
	for rows.Next() {
		var id, data string
		var enabled int
		if err := rows.Scan(&id, &data, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan risk limit: %w", err)
		}

		var limit domain.RiskLimit
		if err := json.Unmarshal([]byte(data), &limit); err != nil {
			return nil, fmt.Errorf("failed to decode risk limit %s: %w", id, err)
		}
		limit.ID = id
		limit.UserID = userID
		limit.Enabled = enabled == 1
		limits = append(limits, limit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate risk limits: %w", err)
	}

	return limits, nil
}

// ReplaceLimits atomically swaps the user's limit set for the given one,
// assigning IDs to limits that lack them
func (r *Repository) ReplaceLimits(ctx context.Context, userID string, limits []domain.RiskLimit) ([]domain.RiskLimit, error) {
	now := time.Now().UTC()

	replaced := make([]domain.RiskLimit, len(limits))
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM risk_limits WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to clear risk limits: %w", err)
		}

		for i, limit := range limits {
			if limit.ID == "" {
				limit.ID = uuid.New().String()
			}
			limit.UserID = userID

			data, err := json.Marshal(limit)
			if err != nil {
				return fmt.Errorf("failed to encode risk limit: %w", err)
			}

			enabled := 0
			if limit.Enabled {
				enabled = 1
			}

			// Preserve insertion order across the shared timestamp
			createdAt := now.Add(time.Duration(i) * time.Microsecond)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO risk_limits (id, user_id, data, enabled, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				limit.ID, userID, string(data), enabled, createdAt.Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("failed to insert risk limit: %w", err)
			}

			replaced[i] = limit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug().Str("user_id", userID).Int("count", len(replaced)).Msg("risk limits replaced")
	return replaced, nil
}
