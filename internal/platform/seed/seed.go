// Package seed loads the bundled disease corpus and subscription plans into
// the database at startup so a fresh deployment can answer chats immediately.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medibot/medibot/internal/domain/disease"
	"github.com/medibot/medibot/internal/domain/plan"
)

const (
	diseasesFile = "diseases.json"
	plansFile    = "plans.json"
)

// Seeder loads bundled reference data into the repositories.
type Seeder struct {
	diseases disease.Repository
	plans    plan.Repository
	logger   zerolog.Logger
}

func New(diseases disease.Repository, plans plan.Repository, logger zerolog.Logger) *Seeder {
	return &Seeder{diseases: diseases, plans: plans, logger: logger}
}

// Run seeds diseases and plans from JSON files under dataDir. Diseases are
// inserted only when absent so operator edits survive restarts; plans are
// upserted so quota changes in plans.json take effect.
func (s *Seeder) Run(ctx context.Context, dataDir string) error {
	if err := s.seedDiseases(ctx, filepath.Join(dataDir, diseasesFile)); err != nil {
		return fmt.Errorf("seed diseases: %w", err)
	}
	if err := s.seedPlans(ctx, filepath.Join(dataDir, plansFile)); err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}
	return nil
}

func (s *Seeder) seedDiseases(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries []struct {
		Name      string             `json:"name"`
		Symptoms  []string           `json:"symptoms"`
		Medicines []disease.Medicine `json:"medicines"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	created := 0
	for _, e := range entries {
		_, err := s.diseases.GetByName(ctx, e.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		d := &disease.Disease{
			Name:      e.Name,
			Symptoms:  e.Symptoms,
			Medicines: e.Medicines,
		}
		if err := s.diseases.Create(ctx, d); err != nil {
			return err
		}
		created++
	}

	s.logger.Info().
		Int("total", len(entries)).
		Int("created", created).
		Msg("disease corpus seeded")
	return nil
}

func (s *Seeder) seedPlans(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries []plan.Plan
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	created, updated := 0, 0
	for i := range entries {
		e := &entries[i]
		existing, err := s.plans.GetByKey(ctx, e.Key)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			if err := s.plans.Create(ctx, e); err != nil {
				return err
			}
			created++
			continue
		}
		e.ID = existing.ID
		if err := s.plans.Update(ctx, e); err != nil {
			return err
		}
		updated++
	}

	s.logger.Info().
		Int("created", created).
		Int("updated", updated).
		Msg("subscription plans seeded")
	return nil
}
