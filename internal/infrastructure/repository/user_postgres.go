package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingoplatform/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create заводит юзера и пустой профиль одной транзакцией.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &domain.Profile{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.Username,
			CurrentPlan: domain.PlanFree,
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return wrapStore(err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapStore(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapStore(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, newHash string) error {
	return wrapStore(r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("password", newHash).Error)
}

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapStore(err)
	}
	return &profile, nil
}

func (r *ProfileRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error {
	return wrapStore(r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("display_name", name).Error)
}

// SaveOnboarding записывает анкету онбординга один раз. Повторная
// попытка — ErrAlreadyProcessed, поля после онбординга read-only.
func (r *ProfileRepository) SaveOnboarding(ctx context.Context, id uuid.UUID, p *domain.Profile) error {
	result := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ? AND onboarding_done = ?", id, false).
		Updates(map[string]interface{}{
			"onboarding_done":    true,
			"native_language":    p.NativeLanguage,
			"motivation":         p.Motivation,
			"proficiency_level":  p.ProficiencyLevel,
			"daily_goal_minutes": p.DailyGoalMinutes,
			"reminder_time":      p.ReminderTime,
		})
	if result.Error != nil {
		return wrapStore(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func (r *ProfileRepository) SetLoginDates(ctx context.Context, id uuid.UUID, lastLogin, lastLoginXP string) error {
	updates := map[string]interface{}{"last_login_date": lastLogin}
	if lastLoginXP != "" {
		updates["last_login_xp_date"] = lastLoginXP
	}
	return wrapStore(r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(updates).Error)
}

func (r *ProfileRepository) SetStreak(ctx context.Context, id uuid.UUID, streak int) error {
	return wrapStore(r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("streak", streak).Error)
}

func (r *ProfileRepository) SetPlan(ctx context.Context, id uuid.UUID, plan string) error {
	return wrapStore(r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("current_plan", plan).Error)
}
