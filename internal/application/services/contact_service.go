package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/auth"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// ContactService manages the people the shop works with
type ContactService struct {
	contacts *persistence.ContactRepository
}

// NewContactService creates a new ContactService
func NewContactService(contacts *persistence.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

func isValidContactRole(s string) bool {
	switch constants.ContactRole(s) {
	case constants.ContactClient, constants.ContactPhotographer, constants.ContactEditor,
		constants.ContactInspector, constants.ContactTransport, constants.ContactOther:
		return true
	}
	return false
}

// ContactRequest carries the writable fields of a contact
type ContactRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Role      *string `json:"role"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

// CreateContact adds a new contact
func (s *ContactService) CreateContact(ctx context.Context, req ContactRequest) (*models.Contact, error) {
	if req.FirstName == nil || strings.TrimSpace(*req.FirstName) == "" {
		return nil, errors.NewValidationError("first_name", "First name is required")
	}
	if req.Email != nil && *req.Email != "" && !auth.IsValidEmail(*req.Email) {
		return nil, errors.NewValidationError("email", "Invalid email format")
	}

	role := string(constants.ContactOther)
	if req.Role != nil && *req.Role != "" {
		if !isValidContactRole(*req.Role) {
			return nil, errors.NewValidationError("role", fmt.Sprintf("Unknown role: %s", *req.Role))
		}
		role = *req.Role
	}
	status := string(constants.ContactActive)
	if req.Status != nil && *req.Status != "" {
		if *req.Status != string(constants.ContactActive) && *req.Status != string(constants.ContactInactive) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		status = *req.Status
	}

	lastName := ""
	if req.LastName != nil {
		lastName = strings.TrimSpace(*req.LastName)
	}

	c := &models.Contact{
		ID:        utils.GenerateID(),
		FirstName: strings.TrimSpace(*req.FirstName),
		LastName:  lastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Role:      role,
		Status:    status,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	log.Printf("✅ Contact created: %s (%s)", c.FullName(), c.Role)
	return c, nil
}

// GetContact fetches a single contact
func (s *ContactService) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("Contact", id)
	}
	return c, nil
}

// ListContacts returns contacts, optionally filtered by role or activity
func (s *ContactService) ListContacts(ctx context.Context, role string, activeOnly bool) ([]*models.Contact, error) {
	if role != "" && !isValidContactRole(role) {
		return nil, errors.NewValidationError("role", fmt.Sprintf("Unknown role: %s", role))
	}
	return s.contacts.FindAll(ctx, role, activeOnly)
}

// UpdateContact applies a partial update
func (s *ContactService) UpdateContact(ctx context.Context, id string, req ContactRequest) (*models.Contact, error) {
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("Contact", id)
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if name == "" {
			return nil, errors.NewValidationError("first_name", "First name cannot be empty")
		}
		updates["first_name"] = name
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		if *req.Email != "" && !auth.IsValidEmail(*req.Email) {
			return nil, errors.NewValidationError("email", "Invalid email format")
		}
		updates["email"] = nullable(*req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = nullable(*req.Phone)
	}
	if req.Company != nil {
		updates["company"] = nullable(*req.Company)
	}
	if req.Role != nil {
		if !isValidContactRole(*req.Role) {
			return nil, errors.NewValidationError("role", fmt.Sprintf("Unknown role: %s", *req.Role))
		}
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		if *req.Status != string(constants.ContactActive) && *req.Status != string(constants.ContactInactive) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = nullable(*req.Notes)
	}

	if len(updates) == 0 {
		return c, nil
	}
	if err := s.contacts.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return s.contacts.GetByID(ctx, id)
}

// DeleteContact soft deletes a contact
func (s *ContactService) DeleteContact(ctx context.Context, id string) error {
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return errors.NewNotFoundError("Contact", id)
	}
	if err := s.contacts.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	log.Printf("🗑️ Contact deleted: %s", c.FullName())
	return nil
}
