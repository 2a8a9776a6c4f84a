// Package directory serves the read-only doctor and department listings.
// These are pass-through queries with no write path, so results are cached
// in Redis for a short TTL and simply expire.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	redisclient "github.com/clinicore/appointment-system/internal/redis"
)

type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// DoctorListing is the directory view of a doctor: profile fields joined
// with the user's name and the department name.
type DoctorListing struct {
	ID              int64  `json:"id"`
	FullName        string `json:"full_name"`
	Title           string `json:"title,omitempty"`
	Department      string `json:"department"`
	ExperienceYears *int   `json:"experience_years,omitempty"`
	IsActive        bool   `json:"is_active"`
}

type Repository interface {
	ListDoctors(ctx context.Context) ([]DoctorListing, error)
	ListDepartments(ctx context.Context) ([]Department, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
}

const (
	doctorsCacheKey     = "directory:doctors"
	departmentsCacheKey = "directory:departments"
)

type Service struct {
	repo   Repository
	cache  Cache
	logger zerolog.Logger
}

// NewService builds a directory service. cache may be nil, in which case
// every call goes to the repository.
func NewService(repo Repository, cache Cache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) ListDoctors(ctx context.Context) ([]DoctorListing, error) {
	var doctors []DoctorListing
	if s.cached(ctx, doctorsCacheKey, &doctors) {
		return doctors, nil
	}

	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	s.store(ctx, doctorsCacheKey, doctors)
	return doctors, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	var departments []Department
	if s.cached(ctx, departmentsCacheKey, &departments) {
		return departments, nil
	}

	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	s.store(ctx, departmentsCacheKey, departments)
	return departments, nil
}

// cached loads key into dest and reports whether it hit. Cache failures are
// treated as misses; the listing still comes from the store.
func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, redisclient.ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	return false
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
