package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/auth"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// UserService handles account administration
type UserService struct {
	users    *persistence.UserRepository
	sessions *persistence.SessionRepository
}

// NewUserService creates a new UserService
func NewUserService(users *persistence.UserRepository, sessions *persistence.SessionRepository) *UserService {
	return &UserService{users: users, sessions: sessions}
}

// CreateUserRequest contains the data needed to create a new user
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser creates a new user account
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if !auth.IsValidEmail(req.Email) {
		return nil, errors.NewValidationError("email", "Invalid email format")
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = string(constants.RoleViewer)
	}
	if !constants.IsValidRole(role) {
		return nil, errors.NewValidationError("role", fmt.Sprintf("Unknown role: %s", role))
	}

	exists, err := s.users.CheckEmailConflict(ctx, req.Email, "")
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("User", "email", req.Email)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           utils.GenerateID(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
	return user, nil
}

// UpdateUserRequest contains the data that can be updated on a user
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUser updates an existing user's information
func (s *UserService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		return errors.NewNotFoundError("User", userID)
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Email != "" && req.Email != user.Email {
		if !auth.IsValidEmail(req.Email) {
			return errors.NewValidationError("email", "Invalid email format")
		}
		emailExists, err := s.users.CheckEmailConflict(ctx, req.Email, userID)
		if err != nil {
			return fmt.Errorf("database error checking email: %w", err)
		}
		if emailExists {
			return errors.NewConflictError("User", "email", req.Email)
		}
		updates["email"] = req.Email
	}

	if req.Role != "" && req.Role != user.Role {
		if !constants.IsValidRole(req.Role) {
			return errors.NewValidationError("role", fmt.Sprintf("Unknown role: %s", req.Role))
		}
		if err := s.guardLastAdmin(ctx, user, "demoted"); err != nil {
			return err
		}
		updates["role"] = req.Role
	}

	if req.Password != "" {
		if err := auth.ValidatePasswordStrength(req.Password); err != nil {
			return err
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = hash
	}

	deactivating := false
	if req.IsActive != nil && *req.IsActive != user.IsActive {
		if !*req.IsActive {
			if err := s.guardLastAdmin(ctx, user, "deactivated"); err != nil {
				return err
			}
			deactivating = true
		}
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return nil // No changes
	}

	if err := s.users.Update(ctx, userID, updates); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	// Deactivation ends any open sessions
	if deactivating {
		if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
			log.Printf("⚠️ Failed to revoke sessions for deactivated user %s: %v", userID, err)
		}
	}

	log.Printf("📝 User updated: %s", userID)
	return nil
}

// DeleteUser removes a user from the system
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		return errors.NewNotFoundError("User", userID)
	}

	if err := s.guardLastAdmin(ctx, user, "deleted"); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		log.Printf("⚠️ Failed to revoke sessions for deleted user %s: %v", userID, err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Printf("🗑️ User deleted: %s", userID)
	return nil
}

// GetUsers retrieves all users in the system
func (s *UserService) GetUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, nil
}

// GetUser retrieves a single user
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("User", userID)
	}
	return user, nil
}

// guardLastAdmin rejects changes that would leave the system without an
// active admin account.
func (s *UserService) guardLastAdmin(ctx context.Context, user *models.User, action string) error {
	if user.Role != string(constants.RoleAdmin) || !user.IsActive {
		return nil
	}
	count, err := s.users.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count <= 1 {
		return errors.NewValidationError("role", fmt.Sprintf("The last active admin cannot be %s", action))
	}
	return nil
}
