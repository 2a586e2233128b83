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

// Karl Benz patented the Motorwagen in 1886; nothing in the archive predates it
const earliestModelYear = 1886

// CarService owns the car lifecycle and its domain events
type CarService struct {
	cars   *persistence.CarRepository
	tx     *TransactionManager
	outbox *OutboxService
}

// NewCarService creates a new CarService
func NewCarService(cars *persistence.CarRepository, tx *TransactionManager, outbox *OutboxService) *CarService {
	return &CarService{cars: cars, tx: tx, outbox: outbox}
}

// CreateCarRequest carries the fields accepted on car creation
type CreateCarRequest struct {
	Make            string   `json:"make"`
	Model           string   `json:"model"`
	Year            int      `json:"year"`
	Trim            *string  `json:"trim"`
	VIN             *string  `json:"vin"`
	Color           *string  `json:"color"`
	InteriorColor   *string  `json:"interior_color"`
	Mileage         *int     `json:"mileage"`
	MileageUnit     string   `json:"mileage_unit"`
	PriceAsking     *float64 `json:"price_asking"`
	PriceSold       *float64 `json:"price_sold"`
	Engine          *string  `json:"engine"`
	Transmission    *string  `json:"transmission"`
	Horsepower      *int     `json:"horsepower"`
	Status          string   `json:"status"`
	Condition       *string  `json:"condition"`
	Location        *string  `json:"location"`
	Description     *string  `json:"description"`
	ClientContactID *string  `json:"client_contact_id"`
}

// CreateCar validates and persists a new car, enqueueing car.created
func (s *CarService) CreateCar(ctx context.Context, req CreateCarRequest, actorID string) (*models.Car, error) {
	if req.Make == "" {
		return nil, errors.NewValidationError("make", "Make is required")
	}
	if req.Model == "" {
		return nil, errors.NewValidationError("model", "Model is required")
	}
	if req.Year < earliestModelYear || req.Year > time.Now().Year()+2 {
		return nil, errors.NewValidationError("year", fmt.Sprintf("Year must be between %d and %d", earliestModelYear, time.Now().Year()+2))
	}

	status := req.Status
	if status == "" {
		status = string(constants.CarStatusAvailable)
	}
	if !constants.IsValidCarStatus(status) {
		return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", status))
	}

	unit := req.MileageUnit
	if unit == "" {
		unit = "mi"
	}
	if unit != "mi" && unit != "km" {
		return nil, errors.NewValidationError("mileage_unit", "Mileage unit must be mi or km")
	}

	if req.VIN != nil && *req.VIN != "" {
		taken, err := s.cars.VINExists(ctx, *req.VIN, "")
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if taken {
			return nil, errors.NewConflictError("Car", "vin", *req.VIN)
		}
	}

	car := &models.Car{
		ID:              utils.GenerateID(),
		Make:            req.Make,
		Model:           req.Model,
		Year:            req.Year,
		Trim:            req.Trim,
		VIN:             req.VIN,
		Color:           req.Color,
		InteriorColor:   req.InteriorColor,
		Mileage:         req.Mileage,
		MileageUnit:     unit,
		PriceAsking:     req.PriceAsking,
		PriceSold:       req.PriceSold,
		Engine:          req.Engine,
		Transmission:    req.Transmission,
		Horsepower:      req.Horsepower,
		Status:          status,
		Condition:       req.Condition,
		Location:        req.Location,
		Description:     req.Description,
		ClientContactID: req.ClientContactID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.cars.Create(txCtx, car); err != nil {
			return fmt.Errorf("failed to create car: %w", err)
		}
		return s.outbox.EnqueueEventTx(txCtx, tx, constants.EventCarCreated, EventPayload{
			Entity:   "car",
			EntityID: car.ID,
			ActorID:  actorID,
			Detail:   map[string]interface{}{"display_name": car.DisplayName()},
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Car created: %s (%s)", car.DisplayName(), car.ID)
	return car, nil
}

// UpdateCarRequest carries the PATCH fields; nil means leave unchanged
type UpdateCarRequest struct {
	Make            *string  `json:"make"`
	Model           *string  `json:"model"`
	Year            *int     `json:"year"`
	Trim            *string  `json:"trim"`
	VIN             *string  `json:"vin"`
	Color           *string  `json:"color"`
	InteriorColor   *string  `json:"interior_color"`
	Mileage         *int     `json:"mileage"`
	MileageUnit     *string  `json:"mileage_unit"`
	PriceAsking     *float64 `json:"price_asking"`
	PriceSold       *float64 `json:"price_sold"`
	Engine          *string  `json:"engine"`
	Transmission    *string  `json:"transmission"`
	Horsepower      *int     `json:"horsepower"`
	Status          *string  `json:"status"`
	Condition       *string  `json:"condition"`
	Location        *string  `json:"location"`
	Description     *string  `json:"description"`
	ClientContactID *string  `json:"client_contact_id"`
	PrimaryImageID  *string  `json:"primary_image_id"`
}

// UpdateCar applies a partial update and enqueues car.updated
func (s *CarService) UpdateCar(ctx context.Context, id string, req UpdateCarRequest, actorID string) (*models.Car, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if car == nil {
		return nil, errors.NewNotFoundError("Car", id)
	}

	updates := make(map[string]interface{})
	changed := []string{}
	set := func(col string, v interface{}) {
		updates[col] = v
		changed = append(changed, col)
	}

	if req.Make != nil && *req.Make != "" {
		set("make", *req.Make)
	}
	if req.Model != nil && *req.Model != "" {
		set("model", *req.Model)
	}
	if req.Year != nil {
		if *req.Year < earliestModelYear || *req.Year > time.Now().Year()+2 {
			return nil, errors.NewValidationError("year", fmt.Sprintf("Year must be between %d and %d", earliestModelYear, time.Now().Year()+2))
		}
		set("year", *req.Year)
	}
	if req.Trim != nil {
		set("trim", nullable(*req.Trim))
	}
	if req.VIN != nil {
		if *req.VIN != "" {
			taken, err := s.cars.VINExists(ctx, *req.VIN, id)
			if err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			if taken {
				return nil, errors.NewConflictError("Car", "vin", *req.VIN)
			}
		}
		set("vin", nullable(*req.VIN))
	}
	if req.Color != nil {
		set("color", nullable(*req.Color))
	}
	if req.InteriorColor != nil {
		set("interior_color", nullable(*req.InteriorColor))
	}
	if req.Mileage != nil {
		set("mileage", *req.Mileage)
	}
	if req.MileageUnit != nil {
		if *req.MileageUnit != "mi" && *req.MileageUnit != "km" {
			return nil, errors.NewValidationError("mileage_unit", "Mileage unit must be mi or km")
		}
		set("mileage_unit", *req.MileageUnit)
	}
	if req.PriceAsking != nil {
		set("price_asking", *req.PriceAsking)
	}
	if req.PriceSold != nil {
		set("price_sold", *req.PriceSold)
	}
	if req.Engine != nil {
		set("engine", nullable(*req.Engine))
	}
	if req.Transmission != nil {
		set("transmission", nullable(*req.Transmission))
	}
	if req.Horsepower != nil {
		set("horsepower", *req.Horsepower)
	}
	if req.Status != nil {
		if !constants.IsValidCarStatus(*req.Status) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		set("status", *req.Status)
	}
	if req.Condition != nil {
		set("condition", nullable(*req.Condition))
	}
	if req.Location != nil {
		set("location", nullable(*req.Location))
	}
	if req.Description != nil {
		set("description", nullable(*req.Description))
	}
	if req.ClientContactID != nil {
		set("client_contact_id", nullable(*req.ClientContactID))
	}
	if req.PrimaryImageID != nil {
		set("primary_image_id", nullable(*req.PrimaryImageID))
	}

	if len(updates) == 0 {
		return car, nil
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.cars.Update(txCtx, id, updates); err != nil {
			return fmt.Errorf("failed to update car: %w", err)
		}
		return s.outbox.EnqueueEventTx(txCtx, tx, constants.EventCarUpdated, EventPayload{
			Entity:   "car",
			EntityID: id,
			ActorID:  actorID,
			Detail:   map[string]interface{}{"fields": changed},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.cars.GetByID(ctx, id)
}

// DeleteCar soft-deletes a car and enqueues car.deleted
func (s *CarService) DeleteCar(ctx context.Context, id, actorID string) error {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if car == nil {
		return errors.NewNotFoundError("Car", id)
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.cars.SoftDelete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete car: %w", err)
		}
		return s.outbox.EnqueueEventTx(txCtx, tx, constants.EventCarDeleted, EventPayload{
			Entity:   "car",
			EntityID: id,
			ActorID:  actorID,
			Detail:   map[string]interface{}{"display_name": car.DisplayName()},
		})
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ Car deleted: %s (%s)", car.DisplayName(), id)
	return nil
}

// GetCar fetches a single car
func (s *CarService) GetCar(ctx context.Context, id string) (*models.Car, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, errors.NewNotFoundError("Car", id)
	}
	return car, nil
}

// ListCars returns a filtered page of cars plus the unpaginated total
func (s *CarService) ListCars(ctx context.Context, filter persistence.CarFilter) ([]*models.Car, int, error) {
	if filter.Status != "" && !constants.IsValidCarStatus(filter.Status) {
		return nil, 0, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", filter.Status))
	}
	return s.cars.List(ctx, filter)
}

// nullable maps "" to NULL for optional text columns
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
