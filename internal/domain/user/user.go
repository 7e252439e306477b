package user

import (
	"database/sql"
	"time"
)

// User represents a registered survey participant.
type User struct {
	ID         int64
	TelegramID int64
	Username   sql.NullString // To handle users without a public handle
	Timezone   string         // IANA name or canonical "UTC±H"
	CreatedAt  time.Time
}

// DisplayName returns the Telegram handle or a placeholder for report texts.
func (u *User) DisplayName() string {
	if u.Username.Valid && u.Username.String != "" {
		return u.Username.String
	}
	return "-"
}
