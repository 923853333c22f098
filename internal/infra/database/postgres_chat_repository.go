package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"container_bot/internal/domain/chat"
	"container_bot/internal/domain/user"

	"github.com/lib/pq"
)

type PostgresChatRepository struct {
	db *sql.DB
}

func NewPostgresChatRepository(db *sql.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

// Upsert creates the chat or refreshes its title.
func (r *PostgresChatRepository) Upsert(ctx context.Context, telegramID int64, title string) (*chat.Chat, error) {
	query := `INSERT INTO chats (telegram_id, name)
               VALUES ($1, $2)
               ON CONFLICT (telegram_id) DO UPDATE SET name = EXCLUDED.name
               RETURNING id, telegram_id, name, created_at`
	c := &chat.Chat{}
	if err := r.db.QueryRowContext(ctx, query, telegramID, title).Scan(&c.ID, &c.TelegramID, &c.Name, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("error upserting chat: %w", err)
	}
	return c, nil
}

func (r *PostgresChatRepository) LinkUser(ctx context.Context, chatID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_users (chat_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, chatID, userID)
	if err != nil {
		return fmt.Errorf("error linking user to chat: %w", err)
	}
	return nil
}

func (r *PostgresChatRepository) List(ctx context.Context) ([]*chat.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, telegram_id, name, created_at FROM chats ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("error listing chats: %w", err)
	}
	defer rows.Close()

	chats := make([]*chat.Chat, 0)
	for rows.Next() {
		c := &chat.Chat{}
		if err := rows.Scan(&c.ID, &c.TelegramID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning chat: %w", err)
		}
		chats = append(chats, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}
	return chats, nil
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id int64) (*chat.Chat, error) {
	c := &chat.Chat{}
	err := r.db.QueryRowContext(ctx, `SELECT id, telegram_id, name, created_at FROM chats WHERE id = $1`, id).
		Scan(&c.ID, &c.TelegramID, &c.Name, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("error getting chat by ID: %w", err)
	}
	return c, nil
}

// ListMembers returns members ordered by user id. No kinds means every member.
func (r *PostgresChatRepository) ListMembers(ctx context.Context, chatID int64, kinds ...user.Type) ([]*chat.Member, error) {
	query := `SELECT u.id, u.telegram_id, u.username
               FROM chat_users cu JOIN users u ON u.id = cu.user_id
               WHERE cu.chat_id = $1`
	args := []interface{}{chatID}
	if len(kinds) > 0 {
		types := make([]int64, 0, len(kinds))
		for _, k := range kinds {
			types = append(types, int64(k))
		}
		query += ` AND u.type = ANY($2)`
		args = append(args, pq.Array(types))
	}
	query += ` ORDER BY u.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing chat members: %w", err)
	}
	defer rows.Close()

	members := make([]*chat.Member, 0)
	for rows.Next() {
		m := &chat.Member{}
		if err := rows.Scan(&m.UserID, &m.TelegramID, &m.Username); err != nil {
			return nil, fmt.Errorf("error scanning chat member: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat members: %w", err)
	}
	return members, nil
}

// GetStatistic counts the chat's messages created at or after since, per user.
func (r *PostgresChatRepository) GetStatistic(ctx context.Context, chatID int64, since time.Time) (*chat.Statistic, error) {
	stat := &chat.Statistic{}
	err := r.db.QueryRowContext(ctx, `SELECT name FROM chats WHERE id = $1`, chatID).Scan(&stat.ChatName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("error getting chat for statistic: %w", err)
	}

	query := `SELECT u.id, u.username, COUNT(*)
               FROM messages m JOIN users u ON u.id = m.user_id
               WHERE m.chat_id = $1 AND m.created_at >= $2
               GROUP BY u.id, u.username
               ORDER BY COUNT(*) DESC, u.id`
	rows, err := r.db.QueryContext(ctx, query, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("error querying chat statistic: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var us chat.UserStatistic
		if err := rows.Scan(&us.UserID, &us.Username, &us.MessageCount); err != nil {
			return nil, fmt.Errorf("error scanning chat statistic: %w", err)
		}
		stat.MessageCount += us.MessageCount
		stat.Users = append(stat.Users, us)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat statistic: %w", err)
	}
	return stat, nil
}
