package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/medibot/medibot/internal/domain/disease"
)

func TestDiseaseCRUD(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	repo := disease.NewRepoPG(globalDB.Pool)

	t.Run("Create", func(t *testing.T) {
		d := createTestDisease(t, ctx, "Common Cold", []string{"runny nose", "sore throat", "cough"})
		if d.ID.String() == "" {
			t.Fatal("expected non-empty ID after create")
		}
	})

	t.Run("GetByNameCaseInsensitive", func(t *testing.T) {
		d, err := repo.GetByName(ctx, "COMMON COLD")
		if err != nil {
			t.Fatalf("get by name: %v", err)
		}
		if d.Name != "Common Cold" {
			t.Errorf("name = %q", d.Name)
		}
		if len(d.Symptoms) != 3 {
			t.Errorf("symptoms = %v", d.Symptoms)
		}
		if len(d.Medicines) != 1 || d.Medicines[0].Price == nil {
			t.Errorf("medicines round-trip lost fields: %+v", d.Medicines)
		}
	})

	t.Run("DuplicateName", func(t *testing.T) {
		err := repo.Create(ctx, &disease.Disease{
			Name:     "Common Cold",
			Symptoms: []string{"cough"},
		})
		if err == nil {
			t.Fatal("expected unique constraint violation")
		}
	})

	t.Run("Update", func(t *testing.T) {
		d, err := repo.GetByName(ctx, "Common Cold")
		if err != nil {
			t.Fatal(err)
		}
		d.Symptoms = append(d.Symptoms, "sneezing")
		if err := repo.Update(ctx, d); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := repo.GetByID(ctx, d.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Symptoms) != 4 {
			t.Errorf("symptoms after update = %v", got.Symptoms)
		}
	})

	t.Run("ListPagination", func(t *testing.T) {
		createTestDisease(t, ctx, "Fever", []string{"fever", "chills"})
		createTestDisease(t, ctx, "Headache", []string{"headache"})

		page, total, err := repo.List(ctx, 2, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if len(page) != 2 {
			t.Errorf("page size = %d, want 2", len(page))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		d, err := repo.GetByName(ctx, "Headache")
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(ctx, d.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, d.ID); !errors.Is(err, pgx.ErrNoRows) {
			t.Errorf("expected ErrNoRows after delete, got %v", err)
		}
	})
}
