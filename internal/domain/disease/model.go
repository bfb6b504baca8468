package disease

import (
	"time"

	"github.com/google/uuid"
)

// Medicine is a single recommended medicine for a disease. Price, buy link
// and image are optional and are stripped from responses according to the
// user's subscription plan.
type Medicine struct {
	Name    string  `json:"name"`
	Price   *string `json:"price,omitempty"`
	BuyLink *string `json:"buy_link,omitempty"`
	Image   *string `json:"image,omitempty"`
}

// Disease maps to the disease table. Symptoms and medicines are stored as
// JSONB columns. Name is unique and is the lookup key for matcher results.
type Disease struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Symptoms  []string   `db:"symptoms" json:"symptoms"`
	Medicines []Medicine `db:"medicines" json:"medicines"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
