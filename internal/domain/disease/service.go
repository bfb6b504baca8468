package disease

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	diseases Repository
}

func NewService(diseases Repository) *Service {
	return &Service{diseases: diseases}
}

func (s *Service) Create(ctx context.Context, d *Disease) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(d.Symptoms) == 0 {
		return fmt.Errorf("symptoms are required")
	}
	return s.diseases.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Disease, error) {
	return s.diseases.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Disease, error) {
	return s.diseases.GetByName(ctx, name)
}

func (s *Service) Update(ctx context.Context, d *Disease) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.diseases.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.diseases.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Disease, int, error) {
	return s.diseases.List(ctx, limit, offset)
}

func (s *Service) ListAll(ctx context.Context) ([]*Disease, error) {
	return s.diseases.ListAll(ctx)
}
