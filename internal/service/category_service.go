package service

import (
	"context"

	"family-planner/internal/model"
	"family-planner/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, familyID string) ([]model.Category, error) {
	return s.repo.ListByFamily(ctx, familyID)
}

// IconMap resolves category id -> icon; missing categories simply render
// without an icon, never as an error.
func (s *CategoryService) IconMap(ctx context.Context, familyID string) (map[string]string, error) {
	categories, err := s.repo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	icons := make(map[string]string, len(categories))
	for _, c := range categories {
		icons[c.ID] = c.Icon
	}
	return icons, nil
}

// SeedDefaults installs the default household categories for a new family.
func (s *CategoryService) SeedDefaults(ctx context.Context, familyID string) error {
	return s.repo.SeedDefaults(ctx, familyID)
}
