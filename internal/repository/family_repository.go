package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-planner/internal/model"
)

// FamilyRepository manages households.
type FamilyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// Create stores a new family with a short shareable invite code.
func (r *FamilyRepository) Create(ctx context.Context, name string) (*model.Family, error) {
	family := model.Family{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: newInviteCode(),
	}
	if err := r.db.WithContext(ctx).Create(&family).Error; err != nil {
		return nil, fmt.Errorf("create family: %w", err)
	}
	return &family, nil
}

func (r *FamilyRepository) FindByID(ctx context.Context, id string) (*model.Family, error) {
	var family model.Family
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (r *FamilyRepository) FindByInviteCode(ctx context.Context, code string) (*model.Family, error) {
	var family model.Family
	if err := r.db.WithContext(ctx).Where("invite_code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func newInviteCode() string {
	// First UUID block is short enough to type into a chat message.
	return strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}
