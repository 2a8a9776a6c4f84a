package directory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	redisclient "github.com/clinicore/appointment-system/internal/redis"
)

type mockRepo struct {
	doctors     []DoctorListing
	departments []Department
	calls       int
}

func (m *mockRepo) ListDoctors(_ context.Context) ([]DoctorListing, error) {
	m.calls++
	return m.doctors, nil
}

func (m *mockRepo) ListDepartments(_ context.Context) ([]Department, error) {
	m.calls++
	return m.departments, nil
}

type mapCache struct {
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dest any) error {
	raw, ok := c.data[key]
	if !ok {
		return redisclient.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func TestListDoctorsCaches(t *testing.T) {
	years := 12
	repo := &mockRepo{doctors: []DoctorListing{
		{ID: 1, FullName: "Ada Wong", Title: "Dr.", Department: "Cardiology", ExperienceYears: &years, IsActive: true},
	}}
	svc := NewService(repo, newMapCache(), zerolog.Nop())

	first, err := svc.ListDoctors(context.Background())
	if err != nil {
		t.Fatalf("ListDoctors: %v", err)
	}
	second, err := svc.ListDoctors(context.Background())
	if err != nil {
		t.Fatalf("ListDoctors (cached): %v", err)
	}

	if repo.calls != 1 {
		t.Errorf("repo calls = %d, want 1", repo.calls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].FullName != "Ada Wong" {
		t.Errorf("listings = %+v / %+v", first, second)
	}
}

func TestListDepartmentsWithoutCache(t *testing.T) {
	repo := &mockRepo{departments: []Department{{ID: 1, Name: "Neurology", IsActive: true}}}
	svc := NewService(repo, nil, zerolog.Nop())

	for i := 0; i < 2; i++ {
		deps, err := svc.ListDepartments(context.Background())
		if err != nil {
			t.Fatalf("ListDepartments: %v", err)
		}
		if len(deps) != 1 || deps[0].Name != "Neurology" {
			t.Fatalf("departments = %+v", deps)
		}
	}

	if repo.calls != 2 {
		t.Errorf("repo calls = %d, want 2 without cache", repo.calls)
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string, any) error { return errors.New("redis down") }
func (failingCache) Set(context.Context, string, any) error { return errors.New("redis down") }

func TestCacheFailureFallsThrough(t *testing.T) {
	repo := &mockRepo{departments: []Department{{ID: 1, Name: "Oncology", IsActive: true}}}
	svc := NewService(repo, failingCache{}, zerolog.Nop())

	deps, err := svc.ListDepartments(context.Background())
	if err != nil {
		t.Fatalf("ListDepartments: %v", err)
	}
	if len(deps) != 1 {
		t.Fatalf("departments = %+v", deps)
	}
}
