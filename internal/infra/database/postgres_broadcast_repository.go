package database

import (
	"context"
	"database/sql"
	"fmt"

	"container_bot/internal/domain/broadcast"
)

type PostgresBroadcastRepository struct {
	db *sql.DB
}

func NewPostgresBroadcastRepository(db *sql.DB) *PostgresBroadcastRepository {
	return &PostgresBroadcastRepository{db: db}
}

func (r *PostgresBroadcastRepository) GetActive(ctx context.Context, period broadcast.PeriodType) (*broadcast.Message, error) {
	query := `SELECT id, message, period_type, is_active, created_at, updated_at
               FROM broadcast_messages
               WHERE period_type = $1 AND is_active
               ORDER BY created_at DESC
               LIMIT 1`
	m := &broadcast.Message{}
	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, period).Scan(&m.ID, &m.Text, &m.PeriodType, &m.IsActive, &m.CreatedAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBroadcastMessageNotFound
		}
		return nil, fmt.Errorf("error getting active broadcast message: %w", err)
	}
	if updatedAt.Valid {
		m.UpdatedAt = &updatedAt.Time
	}
	return m, nil
}

// Create deactivates the current text of the period type and inserts m as active, in one transaction.
func (r *PostgresBroadcastRepository) Create(ctx context.Context, m *broadcast.Message) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for broadcast message: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	_, err = txn.ExecContext(ctx, `UPDATE broadcast_messages SET is_active = FALSE, updated_at = NOW()
               WHERE period_type = $1 AND is_active`, m.PeriodType)
	if err != nil {
		return fmt.Errorf("error deactivating broadcast messages: %w", err)
	}

	query := `INSERT INTO broadcast_messages (message, period_type, is_active)
               VALUES ($1, $2, TRUE)
               RETURNING id, created_at`
	if err := txn.QueryRowContext(ctx, query, m.Text, m.PeriodType).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("error creating broadcast message: %w", err)
	}
	m.IsActive = true

	return txn.Commit()
}
