package database

import (
	"context"
	"database/sql"
	"fmt"

	"container_bot/internal/domain/message"
)

type PostgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Append(ctx context.Context, m *message.Message) error {
	query := `INSERT INTO messages (user_id, chat_id, content)
               VALUES ($1, $2, $3)
               RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, query, m.UserID, m.ChatID, m.Content).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("error appending message: %w", err)
	}
	return nil
}
