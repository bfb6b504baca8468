package chat

import (
	"context"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// LatestByUser returns the most recently updated session for a user.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*Message, int, error)
}
