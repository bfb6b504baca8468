package disease

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	byID map[uuid.UUID]*Disease
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[uuid.UUID]*Disease)}
}

func (m *mockRepo) Create(_ context.Context, d *Disease) error {
	d.ID = uuid.New()
	m.byID[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Disease, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*Disease, error) {
	for _, d := range m.byID {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, d *Disease) error {
	if _, ok := m.byID[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.byID[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Disease, int, error) {
	all, _ := m.ListAll(context.Background())
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]*Disease, error) {
	var out []*Disease
	for _, d := range m.byID {
		out = append(out, d)
	}
	return out, nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Create(context.Background(), &Disease{Symptoms: []string{"fever"}})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestCreateRequiresSymptoms(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Create(context.Background(), &Disease{Name: "Fever"})
	if err == nil {
		t.Fatal("expected error for missing symptoms")
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(newMockRepo())
	d := &Disease{Name: "Common Cold", Symptoms: []string{"runny nose", "cough"}}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}

	got, err := svc.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Common Cold" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestGetByNameCaseInsensitive(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	d := &Disease{Name: "Common Cold", Symptoms: []string{"cough"}}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetByName(context.Background(), "common cold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != d.ID {
		t.Error("expected the same disease")
	}
}

func TestUpdateRequiresName(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Update(context.Background(), &Disease{ID: uuid.New()})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	d := &Disease{Name: "Fever", Symptoms: []string{"fever"}}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), d.ID); err == nil {
		t.Error("expected disease to be gone")
	}
}
