package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medibot/medibot/internal/domain/plan"
)

// fallbackMaxChats applies when the user's plan record cannot be resolved.
const fallbackMaxChats = 2

type Service struct {
	usage Repository
	now   func() time.Time
}

func NewService(usage Repository) *Service {
	return &Service{usage: usage, now: time.Now}
}

// Today returns the current calendar-day key.
func (s *Service) Today() string {
	return s.now().Format(DateFormat)
}

// ChatCount returns today's chat count for a user. Missing rows count as 0.
func (s *Service) ChatCount(ctx context.Context, userID uuid.UUID) int {
	u, err := s.usage.Get(ctx, userID, s.Today())
	if err != nil {
		return 0
	}
	return u.ChatCount
}

// WithinDailyLimit reports whether the user may start another chat today
// under the given plan.
func (s *Service) WithinDailyLimit(ctx context.Context, userID uuid.UUID, p *plan.Plan) bool {
	maxChats := fallbackMaxChats
	if p != nil {
		maxChats = p.MaxChatsPerDay
	}
	if maxChats == plan.Unlimited {
		return true
	}
	return s.ChatCount(ctx, userID) < maxChats
}

// Increment bumps today's chat counter for the user.
func (s *Service) Increment(ctx context.Context, userID uuid.UUID) error {
	return s.usage.Increment(ctx, userID, s.Today())
}

// MaxChats returns the daily chat cap for a plan, using the fallback when
// the plan record is missing.
func (s *Service) MaxChats(p *plan.Plan) int {
	if p == nil {
		return fallbackMaxChats
	}
	return p.MaxChatsPerDay
}
