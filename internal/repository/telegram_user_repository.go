package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TelegramUserRepository resolves portal emails to Telegram chat ids for the
// notification relay.
type TelegramUserRepository interface {
	ChatIDByEmail(ctx context.Context, email string) (int64, error)
	Register(ctx context.Context, email string, chatID int64) error
}

type telegramUserRepository struct {
	pool *pgxpool.Pool
}

// NewTelegramUserRepository builds the repository.
func NewTelegramUserRepository(pool *pgxpool.Pool) TelegramUserRepository {
	return &telegramUserRepository{pool: pool}
}

func (r *telegramUserRepository) ChatIDByEmail(ctx context.Context, email string) (int64, error) {
	var chatID int64
	err := r.pool.QueryRow(ctx,
		`SELECT chat_id FROM telegram_users WHERE LOWER(email)=LOWER($1)`,
		email,
	).Scan(&chatID)
	if err != nil {
		return 0, mapTableError(err)
	}
	return chatID, nil
}

func (r *telegramUserRepository) Register(ctx context.Context, email string, chatID int64) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO telegram_users (email, chat_id)
        VALUES ($1,$2)
        ON CONFLICT (email) DO UPDATE SET chat_id=EXCLUDED.chat_id, updated_at=NOW()`,
		email, chatID)
	return err
}
