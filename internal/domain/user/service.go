package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medibot/medibot/internal/domain/plan"
)

const (
	DefaultPlan     = plan.KeyBasic
	DefaultLanguage = "en"
)

// defaultLanguages is the fallback language set when a plan record has no
// available_languages configured.
var defaultLanguages = []string{"en", "hi"}

type Service struct {
	users Repository
	plans plan.Repository
}

func NewService(users Repository, plans plan.Repository) *Service {
	return &Service{users: users, plans: plans}
}

// GetOrCreate returns the user for a visitor ID, creating a basic-plan
// English record on first contact.
func (s *Service) GetOrCreate(ctx context.Context, visitorID string) (*User, error) {
	if visitorID == "" {
		return nil, fmt.Errorf("visitor_id is required")
	}
	u, err := s.users.GetByVisitorID(ctx, visitorID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	u = &User{VisitorID: visitorID, Plan: DefaultPlan, Language: DefaultLanguage}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// SwitchPlan moves the user to another subscription plan. The plan must exist.
func (s *Service) SwitchPlan(ctx context.Context, visitorID, planKey string) (*User, error) {
	if _, err := s.plans.GetByKey(ctx, planKey); err != nil {
		return nil, fmt.Errorf("invalid plan: %s", planKey)
	}
	u, err := s.GetOrCreate(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	u.Plan = planKey
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SwitchLanguage changes the user's language. The language must be available
// in the user's current plan.
func (s *Service) SwitchLanguage(ctx context.Context, visitorID, language string) (*User, error) {
	u, err := s.GetOrCreate(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	available := s.AvailableLanguages(ctx, u.Plan)
	if !containsString(available, language) {
		return nil, fmt.Errorf("language %s not available in plan %s", language, u.Plan)
	}

	u.Language = language
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// AvailableLanguages returns the languages a plan unlocks, falling back to
// the basic set when the plan record is missing or unconfigured.
func (s *Service) AvailableLanguages(ctx context.Context, planKey string) []string {
	p, err := s.plans.GetByKey(ctx, planKey)
	if err != nil || len(p.AvailableLanguages) == 0 {
		return defaultLanguages
	}
	return p.AvailableLanguages
}

// Plan returns the user's plan record, or nil when it cannot be resolved.
func (s *Service) Plan(ctx context.Context, u *User) *plan.Plan {
	p, err := s.plans.GetByKey(ctx, u.Plan)
	if err != nil {
		return nil
	}
	return p
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
