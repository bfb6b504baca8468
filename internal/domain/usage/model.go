package usage

import (
	"time"

	"github.com/google/uuid"
)

// DateFormat is the calendar-day key used for quota rows.
const DateFormat = "2006-01-02"

// DailyUsage maps to the daily_usage table. One row per user per calendar
// day, enforced by a unique (user_id, date) constraint.
type DailyUsage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Date      string    `db:"date" json:"date"`
	ChatCount int       `db:"chat_count" json:"chat_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
