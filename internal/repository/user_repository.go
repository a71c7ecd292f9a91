package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-planner/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram finds or creates a user based on TelegramID and keeps
// the chat address and display name current.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID, chatID int64, displayName string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"chat_id":      chatID,
			"display_name": displayName,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.ChatID = chatID
		user.DisplayName = displayName
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			ID:          uuid.NewString(),
			TelegramID:  telegramID,
			ChatID:      chatID,
			DisplayName: displayName,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) SetFamily(ctx context.Context, user *model.User, familyID string) error {
	if err := r.db.WithContext(ctx).Model(user).Update("family_id", familyID).Error; err != nil {
		return fmt.Errorf("set user family: %w", err)
	}
	user.FamilyID = familyID
	return nil
}

func (r *UserRepository) ListByFamily(ctx context.Context, familyID string) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("family_id = ?", familyID).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListReachable returns users that belong to a family and have a chat
// address reminders can be delivered to.
func (r *UserRepository) ListReachable(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("family_id <> '' AND chat_id <> 0").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
