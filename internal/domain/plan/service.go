package plan

import (
	"context"
	"fmt"

	"github.com/medibot/medibot/internal/domain/disease"
)

// Plan keys. The feature matrix for each lives in the subscription_plan table.
const (
	KeyBasic  = "basic"
	KeyPro    = "pro"
	KeyDeluxe = "deluxe"
)

type Service struct {
	plans Repository
}

func NewService(plans Repository) *Service {
	return &Service{plans: plans}
}

func (s *Service) Create(ctx context.Context, p *Plan) error {
	if p.Key == "" {
		return fmt.Errorf("plan_key is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.plans.Create(ctx, p)
}

func (s *Service) GetByKey(ctx context.Context, key string) (*Plan, error) {
	return s.plans.GetByKey(ctx, key)
}

func (s *Service) Update(ctx context.Context, p *Plan) error {
	return s.plans.Update(ctx, p)
}

func (s *Service) List(ctx context.Context) ([]*Plan, error) {
	return s.plans.List(ctx)
}

// FilterMedicines strips medicine fields the plan does not include. Plans
// with the medicine_images feature keep the full records; otherwise pricing
// survives for pro and deluxe and buy links for deluxe only.
func FilterMedicines(p *Plan, meds []disease.Medicine) []disease.Medicine {
	if p != nil && p.MedicineImages {
		return meds
	}

	key := KeyBasic
	if p != nil {
		key = p.Key
	}

	filtered := make([]disease.Medicine, 0, len(meds))
	for _, med := range meds {
		f := disease.Medicine{Name: med.Name}
		if (key == KeyPro || key == KeyDeluxe) && med.Price != nil {
			f.Price = med.Price
		}
		if key == KeyDeluxe && med.BuyLink != nil {
			f.BuyLink = med.BuyLink
		}
		filtered = append(filtered, f)
	}
	return filtered
}
