// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/models"
	"github.com/javajoker/shopify-automation/internal/utils"
)

type UserService struct {
	db   *gorm.DB
	diag Diagnostics
}

type CreateUserRequest struct {
	Username    string                 `json:"username" validate:"required,min=3,max=50,username"`
	Email       string                 `json:"email" validate:"required,email"`
	Password    string                 `json:"password" validate:"required,strong_password"`
	FullName    string                 `json:"full_name,omitempty" validate:"omitempty,max=255"`
	IsSuperuser bool                   `json:"is_superuser,omitempty"`
	Phone       string                 `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address     string                 `json:"address,omitempty"`
	Company     string                 `json:"company,omitempty" validate:"omitempty,max=255"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

type UpdateUserRequest struct {
	Email       *string                `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string                `json:"password,omitempty" validate:"omitempty,strong_password"`
	FullName    *string                `json:"full_name,omitempty" validate:"omitempty,max=255"`
	IsSuperuser *bool                  `json:"is_superuser,omitempty"`
	Phone       *string                `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address     *string                `json:"address,omitempty"`
	Company     *string                `json:"company,omitempty" validate:"omitempty,max=255"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

func NewUserService(db *gorm.DB, diag Diagnostics) *UserService {
	return &UserService{db: db, diag: diag}
}

func (s *UserService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if params.Search != "" {
		term := "%" + likeEscaper.Replace(params.Search) + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR full_name LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	query = utils.ApplySort(query, params, []string{"created_at", "username", "email"})
	if err := utils.ApplyPagination(query, params).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Check uniqueness
	taken, err := s.identityTaken(ctx, req.Username, req.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		IsActive:    true,
		IsSuperuser: req.IsSuperuser,
		Phone:       req.Phone,
		Address:     req.Address,
		Company:     req.Company,
	}
	if req.Preferences != nil {
		user.Preferences = models.JSONB(req.Preferences)
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.record(ctx, "user created", "CreateUser", user.ID)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.identityTaken(ctx, "", *req.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUserExists
		}
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = user.PasswordHash
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.IsSuperuser != nil {
		updates["is_superuser"] = *req.IsSuperuser
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Preferences != nil {
		updates["preferences"] = models.JSONB(req.Preferences)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		s.record(ctx, "user updated", "UpdateUser", user.ID)
	}

	return s.GetUser(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	s.record(ctx, "user deleted", "DeleteUser", id)
	return nil
}

// SetActive activates or deactivates an account.
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	message := "user deactivated"
	if active {
		message = "user activated"
	}
	s.record(ctx, message, "SetActive", user.ID)
	return s.GetUser(ctx, id)
}

func (s *UserService) identityTaken(ctx context.Context, username, email string, exclude uuid.UUID) (bool, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

func (s *UserService) record(ctx context.Context, message, function string, userID uuid.UUID) {
	if s.diag == nil {
		return
	}
	s.diag.Record(ctx, models.LogLevelInfo, LogEntry{
		Message:  message,
		Module:   "users",
		Function: function,
		UserID:   &userID,
	})
}
