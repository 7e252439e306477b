package database

import (
	"context"
	"database/sql"
	"fmt"

	"daily_survey_bot/internal/domain/timezone"
	"daily_survey_bot/internal/domain/user"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Upsert(ctx context.Context, telegramID int64, username string) (*user.User, error) {
	query := `INSERT INTO users (telegram_id, username, timezone)
               VALUES ($1, $2, $3)
               ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username
               RETURNING id, telegram_id, username, timezone, created_at`

	var uname sql.NullString
	if username != "" {
		uname = sql.NullString{String: username, Valid: true}
	}

	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, telegramID, uname, timezone.Default).
		Scan(&u.ID, &u.TelegramID, &u.Username, &u.Timezone, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting user: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	query := `SELECT id, telegram_id, username, timezone, created_at
               FROM users WHERE telegram_id = $1`
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, telegramID).
		Scan(&u.ID, &u.TelegramID, &u.Username, &u.Timezone, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by Telegram ID: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) SetTimezone(ctx context.Context, telegramID int64, tz string) error {
	query := `UPDATE users SET timezone = $1 WHERE telegram_id = $2`
	res, err := r.db.ExecContext(ctx, query, tz, telegramID)
	if err != nil {
		return fmt.Errorf("error updating user timezone: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading timezone update result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	query := `SELECT id, telegram_id, username, timezone, created_at
               FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Username, &u.Timezone, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) DeleteByTelegramID(ctx context.Context, telegramID int64) (bool, error) {
	// Owned surveys and answers go with the user via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return false, fmt.Errorf("error deleting user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading delete result: %w", err)
	}
	return affected > 0, nil
}
