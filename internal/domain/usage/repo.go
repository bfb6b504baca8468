package usage

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Get(ctx context.Context, userID uuid.UUID, date string) (*DailyUsage, error)
	// Increment bumps the chat counter for the given day, creating the row
	// when it does not exist yet.
	Increment(ctx context.Context, userID uuid.UUID, date string) error
}
