package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"container_bot/internal/domain/user"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Upsert keeps the stored username when the new one is empty and never lowers the user type.
func (r *PostgresUserRepository) Upsert(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (telegram_id, username, last_activity, state, type)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (telegram_id) DO UPDATE
               SET username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
                   last_activity = EXCLUDED.last_activity,
                   type = GREATEST(users.type, EXCLUDED.type)
               RETURNING id, username, state, type, created_at`

	err := r.db.QueryRowContext(ctx, query, u.TelegramID, u.Username, u.LastActivity, u.State, u.Type).
		Scan(&u.ID, &u.Username, &u.State, &u.Type, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("error upserting user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT id, telegram_id, username, last_activity, state, type, created_at
               FROM users WHERE id = $1`
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.TelegramID, &u.Username, &u.LastActivity, &u.State, &u.Type, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

// List returns matching users ordered by id.
func (r *PostgresUserRepository) List(ctx context.Context, filter user.ListFilter) ([]*user.User, error) {
	var (
		conditions []string
		args       []interface{}
	)
	from := "users u"
	if filter.ChatID != 0 {
		from = "users u JOIN chat_users cu ON cu.user_id = u.id"
		args = append(args, filter.ChatID)
		conditions = append(conditions, fmt.Sprintf("cu.chat_id = $%d", len(args)))
	}
	if filter.OnlyActive {
		args = append(args, user.StateActive)
		conditions = append(conditions, fmt.Sprintf("u.state = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("u.type = $%d", len(args)))
	}

	query := `SELECT u.id, u.telegram_id, u.username, u.last_activity, u.state, u.type, u.created_at FROM ` + from
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY u.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Username, &u.LastActivity, &u.State, &u.Type, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) GetStatistic(ctx context.Context, userID int64) (*user.Statistic, error) {
	stat := &user.Statistic{}
	err := r.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&stat.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user for statistic: %w", err)
	}

	query := `SELECT c.name, COUNT(*)
               FROM messages m JOIN chats c ON c.id = m.chat_id
               WHERE m.user_id = $1
               GROUP BY c.id, c.name
               ORDER BY COUNT(*) DESC, c.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying user statistic: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs user.ChatStatistic
		if err := rows.Scan(&cs.ChatName, &cs.MessageCount); err != nil {
			return nil, fmt.Errorf("error scanning user statistic: %w", err)
		}
		stat.MessageCount += cs.MessageCount
		stat.Chats = append(stat.Chats, cs)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user statistic: %w", err)
	}
	return stat, nil
}
