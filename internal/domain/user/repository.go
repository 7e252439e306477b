package user

import (
	"context"
)

// Repository defines the operations for persisting and retrieving User entities.
type Repository interface {
	// Upsert creates the user on first contact or refreshes the stored
	// username on every subsequent interaction.
	Upsert(ctx context.Context, telegramID int64, username string) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	SetTimezone(ctx context.Context, telegramID int64, timezone string) error
	ListAll(ctx context.Context) ([]*User, error) // For the scheduler's per-tick fan-out
	// DeleteByTelegramID removes the user and, via cascade, all owned
	// surveys and answers. Reports whether a row existed.
	DeleteByTelegramID(ctx context.Context, telegramID int64) (bool, error)
}
