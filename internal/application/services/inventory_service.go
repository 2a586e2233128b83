package services

import (
	"context"
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

// InventoryService manages production gear and the containers holding it
type InventoryService struct {
	containers *persistence.ContainerRepository
	items      *persistence.InventoryRepository
	contacts   *persistence.ContactRepository
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(containers *persistence.ContainerRepository, items *persistence.InventoryRepository, contacts *persistence.ContactRepository) *InventoryService {
	return &InventoryService{containers: containers, items: items, contacts: contacts}
}

func isValidContainerType(s string) bool {
	switch constants.ContainerType(s) {
	case constants.ContainerCase, constants.ContainerShelf, constants.ContainerBin,
		constants.ContainerPelican, constants.ContainerRack, constants.ContainerOther:
		return true
	}
	return false
}

// ContainerRequest carries the writable fields of a container
type ContainerRequest struct {
	Name          *string `json:"name"`
	ContainerType *string `json:"container_type"`
	Location      *string `json:"location"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

// CreateContainer adds a storage container
func (s *InventoryService) CreateContainer(ctx context.Context, req ContainerRequest) (*models.Container, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, errors.NewValidationError("name", "Name is required")
	}

	containerType := string(constants.ContainerOther)
	if req.ContainerType != nil && *req.ContainerType != "" {
		if !isValidContainerType(*req.ContainerType) {
			return nil, errors.NewValidationError("container_type", fmt.Sprintf("Unknown container type: %s", *req.ContainerType))
		}
		containerType = *req.ContainerType
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	c := &models.Container{
		ID:            utils.GenerateID(),
		Name:          strings.TrimSpace(*req.Name),
		ContainerType: containerType,
		Location:      req.Location,
		Description:   req.Description,
		IsActive:      active,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.containers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	log.Printf("✅ Container created: %s (%s)", c.Name, c.ContainerType)
	return c, nil
}

// GetContainer fetches a container with its item count
func (s *InventoryService) GetContainer(ctx context.Context, id string) (*models.Container, error) {
	c, err := s.containers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("Container", id)
	}
	count, err := s.containers.ItemCount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	c.ItemCount = count
	return c, nil
}

// ListContainers returns all containers with item counts
func (s *InventoryService) ListContainers(ctx context.Context) ([]*models.Container, error) {
	containers, err := s.containers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range containers {
		count, err := s.containers.ItemCount(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		c.ItemCount = count
	}
	return containers, nil
}

// UpdateContainer applies a partial update
func (s *InventoryService) UpdateContainer(ctx context.Context, id string, req ContainerRequest) (*models.Container, error) {
	c, err := s.containers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("Container", id)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", "Name cannot be empty")
		}
		updates["name"] = name
	}
	if req.ContainerType != nil {
		if !isValidContainerType(*req.ContainerType) {
			return nil, errors.NewValidationError("container_type", fmt.Sprintf("Unknown container type: %s", *req.ContainerType))
		}
		updates["container_type"] = *req.ContainerType
	}
	if req.Location != nil {
		updates["location"] = nullable(*req.Location)
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return s.GetContainer(ctx, id)
	}
	if err := s.containers.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update container: %w", err)
	}
	return s.GetContainer(ctx, id)
}

// DeleteContainer removes an empty container
func (s *InventoryService) DeleteContainer(ctx context.Context, id string) error {
	c, err := s.containers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return errors.NewNotFoundError("Container", id)
	}
	count, err := s.containers.ItemCount(ctx, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return errors.NewInUseError("Container", fmt.Sprintf("%d items stored in it", count))
	}
	if err := s.containers.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}
	log.Printf("🗑️ Container deleted: %s", c.Name)
	return nil
}

// InventoryItemRequest carries the writable fields of an inventory item
type InventoryItemRequest struct {
	ContainerID  *string `json:"container_id"`
	Name         *string `json:"name"`
	Category     *string `json:"category"`
	Manufacturer *string `json:"manufacturer"`
	ModelNumber  *string `json:"model_number"`
	SerialNumber *string `json:"serial_number"`
	Quantity     *int    `json:"quantity"`
	Condition    *string `json:"condition"`
	Notes        *string `json:"notes"`
}

func (s *InventoryService) checkContainer(ctx context.Context, containerID string) error {
	c, err := s.containers.GetByID(ctx, containerID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if c == nil {
		return errors.NewNotFoundError("Container", containerID)
	}
	return nil
}

// CreateItem adds a piece of gear to the inventory
func (s *InventoryService) CreateItem(ctx context.Context, req InventoryItemRequest) (*models.InventoryItem, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, errors.NewValidationError("name", "Name is required")
	}
	quantity := 1
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, errors.NewValidationError("quantity", "Quantity must be at least 1")
		}
		quantity = *req.Quantity
	}
	if req.ContainerID != nil && *req.ContainerID != "" {
		if err := s.checkContainer(ctx, *req.ContainerID); err != nil {
			return nil, err
		}
	}

	item := &models.InventoryItem{
		ID:           utils.GenerateID(),
		ContainerID:  req.ContainerID,
		Name:         strings.TrimSpace(*req.Name),
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		ModelNumber:  req.ModelNumber,
		SerialNumber: req.SerialNumber,
		Quantity:     quantity,
		Condition:    req.Condition,
		Notes:        req.Notes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	log.Printf("✅ Inventory item created: %s (x%d)", item.Name, item.Quantity)
	return item, nil
}

// GetItem fetches a single inventory item
func (s *InventoryService) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NewNotFoundError("Inventory item", id)
	}
	return item, nil
}

// ListItems returns inventory, optionally narrowed to a container or category
func (s *InventoryService) ListItems(ctx context.Context, containerID, category string) ([]*models.InventoryItem, error) {
	return s.items.FindAll(ctx, containerID, category)
}

// UpdateItem applies a partial update
func (s *InventoryService) UpdateItem(ctx context.Context, id string, req InventoryItemRequest) (*models.InventoryItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NewNotFoundError("Inventory item", id)
	}

	updates := make(map[string]interface{})
	if req.ContainerID != nil {
		if *req.ContainerID == "" {
			updates["container_id"] = nil
		} else {
			if err := s.checkContainer(ctx, *req.ContainerID); err != nil {
				return nil, err
			}
			updates["container_id"] = *req.ContainerID
		}
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", "Name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Category != nil {
		updates["category"] = nullable(*req.Category)
	}
	if req.Manufacturer != nil {
		updates["manufacturer"] = nullable(*req.Manufacturer)
	}
	if req.ModelNumber != nil {
		updates["model_number"] = nullable(*req.ModelNumber)
	}
	if req.SerialNumber != nil {
		updates["serial_number"] = nullable(*req.SerialNumber)
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, errors.NewValidationError("quantity", "Quantity must be at least 1")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Condition != nil {
		updates["item_condition"] = nullable(*req.Condition)
	}
	if req.Notes != nil {
		updates["notes"] = nullable(*req.Notes)
	}

	if len(updates) == 0 {
		return item, nil
	}
	if err := s.items.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return s.items.GetByID(ctx, id)
}

// DeleteItem removes an inventory item
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return errors.NewNotFoundError("Inventory item", id)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	log.Printf("🗑️ Inventory item deleted: %s", item.Name)
	return nil
}

// CheckoutItem hands an item to a contact. The guarded UPDATE makes two
// racing checkouts resolve to a single holder.
func (s *InventoryService) CheckoutItem(ctx context.Context, id, contactID string) (*models.InventoryItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NewNotFoundError("Inventory item", id)
	}
	if contactID == "" {
		return nil, errors.NewValidationError("contact_id", "Contact is required")
	}

	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if contact == nil {
		return nil, errors.NewNotFoundError("Contact", contactID)
	}

	applied, err := s.items.Checkout(ctx, id, contactID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to check out item: %w", err)
	}
	if !applied {
		holder := ""
		if item.CheckedOutTo != nil {
			holder = *item.CheckedOutTo
		}
		return nil, errors.NewInUseError("Inventory item", fmt.Sprintf("already checked out to %s", holder))
	}

	log.Printf("📤 Inventory item %s checked out to %s", item.Name, contact.FullName())
	return s.items.GetByID(ctx, id)
}

// CheckinItem returns an item to storage. Checking in a free item is a no-op.
func (s *InventoryService) CheckinItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NewNotFoundError("Inventory item", id)
	}
	if item.CheckedOutTo == nil {
		return item, nil
	}

	if err := s.items.Checkin(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to check in item: %w", err)
	}
	log.Printf("📥 Inventory item %s checked in", item.Name)
	return s.items.GetByID(ctx, id)
}
