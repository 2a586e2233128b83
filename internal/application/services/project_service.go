package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// ProjectService manages client engagements and their car sets
type ProjectService struct {
	projects *persistence.ProjectRepository
	cars     *persistence.CarRepository
	contacts *persistence.ContactRepository
	tx       *TransactionManager
}

// NewProjectService creates a new ProjectService
func NewProjectService(projects *persistence.ProjectRepository, cars *persistence.CarRepository, contacts *persistence.ContactRepository, tx *TransactionManager) *ProjectService {
	return &ProjectService{projects: projects, cars: cars, contacts: contacts, tx: tx}
}

func isValidProjectStatus(s string) bool {
	switch constants.ProjectStatus(s) {
	case constants.ProjectPlanning, constants.ProjectActive, constants.ProjectOnHold, constants.ProjectDone:
		return true
	}
	return false
}

// ProjectRequest carries the writable fields of a project
type ProjectRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Status          *string    `json:"status"`
	ClientContactID *string    `json:"client_contact_id"`
	StartsOn        *time.Time `json:"starts_on"`
	DueOn           *time.Time `json:"due_on"`
	CarIDs          *[]string  `json:"car_ids"`
}

func (s *ProjectService) checkCars(ctx context.Context, carIDs []string) error {
	for _, id := range carIDs {
		car, err := s.cars.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if car == nil {
			return errors.NewNotFoundError("Car", id)
		}
	}
	return nil
}

func (s *ProjectService) checkClient(ctx context.Context, contactID string) error {
	c, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if c == nil {
		return errors.NewNotFoundError("Contact", contactID)
	}
	return nil
}

// CreateProject opens a new engagement, optionally linking cars
func (s *ProjectService) CreateProject(ctx context.Context, req ProjectRequest) (*models.Project, error) {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, errors.NewValidationError("title", "Title is required")
	}
	if req.StartsOn != nil && req.DueOn != nil && req.DueOn.Before(*req.StartsOn) {
		return nil, errors.NewValidationError("due_on", "Due date cannot precede start date")
	}

	status := string(constants.ProjectPlanning)
	if req.Status != nil && *req.Status != "" {
		if !isValidProjectStatus(*req.Status) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		status = *req.Status
	}
	if req.ClientContactID != nil && *req.ClientContactID != "" {
		if err := s.checkClient(ctx, *req.ClientContactID); err != nil {
			return nil, err
		}
	}

	carIDs := []string{}
	if req.CarIDs != nil {
		carIDs = dedupe(*req.CarIDs)
		if err := s.checkCars(ctx, carIDs); err != nil {
			return nil, err
		}
	}

	p := &models.Project{
		ID:              utils.GenerateID(),
		Title:           strings.TrimSpace(*req.Title),
		Description:     req.Description,
		Status:          status,
		ClientContactID: req.ClientContactID,
		StartsOn:        req.StartsOn,
		DueOn:           req.DueOn,
		CarIDs:          carIDs,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.projects.Create(txCtx, p); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return s.projects.ReplaceCars(txCtx, tx, p.ID, carIDs)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Project created: %s (%d cars)", p.Title, len(carIDs))
	return p, nil
}

// GetProject fetches a project with its car links
func (s *ProjectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("Project", id)
	}
	return p, nil
}

// ListProjects returns projects, optionally filtered by status
func (s *ProjectService) ListProjects(ctx context.Context, status string) ([]*models.Project, error) {
	if status != "" && !isValidProjectStatus(status) {
		return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", status))
	}
	return s.projects.FindAll(ctx, status)
}

// UpdateProject applies a partial update; a car_ids field replaces the set
func (s *ProjectService) UpdateProject(ctx context.Context, id string, req ProjectRequest) (*models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("Project", id)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errors.NewValidationError("title", "Title cannot be empty")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.Status != nil {
		if !isValidProjectStatus(*req.Status) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		updates["status"] = *req.Status
	}
	if req.ClientContactID != nil {
		if *req.ClientContactID == "" {
			updates["client_contact_id"] = nil
		} else {
			if err := s.checkClient(ctx, *req.ClientContactID); err != nil {
				return nil, err
			}
			updates["client_contact_id"] = *req.ClientContactID
		}
	}
	if req.StartsOn != nil {
		updates["starts_on"] = *req.StartsOn
	}
	if req.DueOn != nil {
		updates["due_on"] = *req.DueOn
	}

	startsOn := p.StartsOn
	if req.StartsOn != nil {
		startsOn = req.StartsOn
	}
	dueOn := p.DueOn
	if req.DueOn != nil {
		dueOn = req.DueOn
	}
	if startsOn != nil && dueOn != nil && dueOn.Before(*startsOn) {
		return nil, errors.NewValidationError("due_on", "Due date cannot precede start date")
	}

	var carIDs []string
	if req.CarIDs != nil {
		carIDs = dedupe(*req.CarIDs)
		if err := s.checkCars(ctx, carIDs); err != nil {
			return nil, err
		}
	}

	if len(updates) == 0 && req.CarIDs == nil {
		return p, nil
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if len(updates) > 0 {
			if err := s.projects.Update(txCtx, id, updates); err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}
		}
		if req.CarIDs != nil {
			if err := s.projects.ReplaceCars(txCtx, tx, id, carIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.projects.GetByID(ctx, id)
}

// ReplaceProjectCars swaps the project's car set wholesale
func (s *ProjectService) ReplaceProjectCars(ctx context.Context, id string, carIDs []string) (*models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("Project", id)
	}

	clean := dedupe(carIDs)
	if err := s.checkCars(ctx, clean); err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		return s.projects.ReplaceCars(txCtx, tx, id, clean)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔄 Project %s now has %d cars", id, len(clean))
	return s.projects.GetByID(ctx, id)
}

// DeleteProject soft deletes a project
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.NewNotFoundError("Project", id)
	}
	if err := s.projects.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	log.Printf("🗑️ Project deleted: %s", p.Title)
	return nil
}
