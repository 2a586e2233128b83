package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// InspectionService owns inspection records and their completion verdicts
type InspectionService struct {
	inspections *persistence.InspectionRepository
	cars        *persistence.CarRepository
	tx          *TransactionManager
	outbox      *OutboxService
}

// NewInspectionService creates a new InspectionService
func NewInspectionService(inspections *persistence.InspectionRepository, cars *persistence.CarRepository, tx *TransactionManager, outbox *OutboxService) *InspectionService {
	return &InspectionService{inspections: inspections, cars: cars, tx: tx, outbox: outbox}
}

// CreateInspectionRequest carries the fields accepted on creation
type CreateInspectionRequest struct {
	CarID           string                 `json:"car_id"`
	Title           string                 `json:"title"`
	InspectorName   *string                `json:"inspector_name"`
	ScheduledAt     *time.Time             `json:"scheduled_at"`
	OdometerReading *int                   `json:"odometer_reading"`
	Notes           *string                `json:"notes"`
	Checklist       []models.ChecklistItem `json:"checklist"`
}

// CreateInspection schedules a new inspection for a car
func (s *InspectionService) CreateInspection(ctx context.Context, req CreateInspectionRequest) (*models.Inspection, error) {
	if req.Title == "" {
		return nil, errors.NewValidationError("title", "Title is required")
	}

	car, err := s.cars.GetByID(ctx, req.CarID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if car == nil {
		return nil, errors.NewNotFoundError("Car", req.CarID)
	}

	checklist := req.Checklist
	if checklist == nil {
		checklist = []models.ChecklistItem{}
	}

	insp := &models.Inspection{
		ID:              utils.GenerateID(),
		CarID:           req.CarID,
		Title:           req.Title,
		Status:          string(constants.InspectionScheduled),
		InspectorName:   req.InspectorName,
		ScheduledAt:     req.ScheduledAt,
		OdometerReading: req.OdometerReading,
		Notes:           req.Notes,
		Checklist:       checklist,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.inspections.Create(ctx, insp); err != nil {
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}

	log.Printf("✅ Inspection created: %s for car %s", insp.Title, req.CarID)
	return insp, nil
}

// GetInspection fetches a single inspection
func (s *InspectionService) GetInspection(ctx context.Context, id string) (*models.Inspection, error) {
	insp, err := s.inspections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, errors.NewNotFoundError("Inspection", id)
	}
	return insp, nil
}

// ListByCar returns a car's inspections, newest first
func (s *InspectionService) ListByCar(ctx context.Context, carID string) ([]*models.Inspection, error) {
	return s.inspections.ListByCar(ctx, carID)
}

// UpdateInspectionRequest carries the PATCH fields
type UpdateInspectionRequest struct {
	Title           *string                 `json:"title"`
	Status          *string                 `json:"status"`
	InspectorName   *string                 `json:"inspector_name"`
	ScheduledAt     *time.Time              `json:"scheduled_at"`
	OdometerReading *int                    `json:"odometer_reading"`
	Notes           *string                 `json:"notes"`
	Checklist       *[]models.ChecklistItem `json:"checklist"`
}

// UpdateInspection applies a partial update
func (s *InspectionService) UpdateInspection(ctx context.Context, id string, req UpdateInspectionRequest) (*models.Inspection, error) {
	insp, err := s.inspections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, errors.NewNotFoundError("Inspection", id)
	}

	updates := make(map[string]interface{})
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}
	if req.Status != nil {
		switch constants.InspectionStatus(*req.Status) {
		case constants.InspectionScheduled, constants.InspectionInProgress, constants.InspectionPass, constants.InspectionFail:
		default:
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		updates["status"] = *req.Status
	}
	if req.InspectorName != nil {
		updates["inspector_name"] = nullable(*req.InspectorName)
	}
	if req.ScheduledAt != nil {
		updates["scheduled_at"] = *req.ScheduledAt
	}
	if req.OdometerReading != nil {
		updates["odometer_reading"] = *req.OdometerReading
	}
	if req.Notes != nil {
		updates["notes"] = nullable(*req.Notes)
	}
	if req.Checklist != nil {
		updates["checklist"] = *req.Checklist
	}

	if len(updates) == 0 {
		return insp, nil
	}
	if err := s.inspections.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update inspection: %w", err)
	}
	return s.inspections.GetByID(ctx, id)
}

// CompleteInspection closes an inspection with a verdict derived from its
// checklist: any failed item fails the whole inspection.
func (s *InspectionService) CompleteInspection(ctx context.Context, id, actorID string) (*models.Inspection, error) {
	insp, err := s.inspections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, errors.NewNotFoundError("Inspection", id)
	}

	if insp.Status == string(constants.InspectionPass) || insp.Status == string(constants.InspectionFail) {
		return nil, errors.NewValidationError("status", "Inspection is already completed")
	}

	verdict := VerdictFromChecklist(insp.Checklist)
	completedAt := time.Now()

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.inspections.Complete(txCtx, id, verdict, completedAt); err != nil {
			return fmt.Errorf("failed to complete inspection: %w", err)
		}
		return s.outbox.EnqueueEventTx(txCtx, tx, constants.EventInspectionDone, EventPayload{
			Entity:   "inspection",
			EntityID: id,
			ActorID:  actorID,
			Detail: map[string]interface{}{
				"car_id":  insp.CarID,
				"title":   insp.Title,
				"verdict": verdict,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Inspection %s completed: %s", id, verdict)
	return s.inspections.GetByID(ctx, id)
}

// DeleteInspection removes an inspection record
func (s *InspectionService) DeleteInspection(ctx context.Context, id string) error {
	insp, err := s.inspections.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if insp == nil {
		return errors.NewNotFoundError("Inspection", id)
	}
	return s.inspections.Delete(ctx, id)
}

// VerdictFromChecklist derives pass/fail: one failed item fails the lot.
// An empty checklist passes; there is nothing to object to.
func VerdictFromChecklist(items []models.ChecklistItem) string {
	for _, item := range items {
		if !item.Passed {
			return string(constants.InspectionFail)
		}
	}
	return string(constants.InspectionPass)
}
