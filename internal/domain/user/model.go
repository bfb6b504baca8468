package user

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the app_user table. VisitorID is the stable anonymous
// identifier carried in the session cookie; there is no signup flow.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	VisitorID string    `db:"visitor_id" json:"visitor_id"`
	Plan      string    `db:"plan" json:"plan"`
	Language  string    `db:"language" json:"language"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
