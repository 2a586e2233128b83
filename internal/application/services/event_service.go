package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// EventService manages calendar events and their reminder sweep
type EventService struct {
	events   *persistence.EventRepository
	cars     *persistence.CarRepository
	projects *persistence.ProjectRepository
	contacts *persistence.ContactRepository
	outbox   *OutboxService
}

// NewEventService creates a new EventService
func NewEventService(events *persistence.EventRepository, cars *persistence.CarRepository, projects *persistence.ProjectRepository, contacts *persistence.ContactRepository, outbox *OutboxService) *EventService {
	return &EventService{events: events, cars: cars, projects: projects, contacts: contacts, outbox: outbox}
}

func isValidEventType(s string) bool {
	switch constants.EventType(s) {
	case constants.EventShoot, constants.EventDelivery, constants.EventAuction,
		constants.EventDeadline, constants.EventInspection, constants.EventOther:
		return true
	}
	return false
}

func isValidEventStatus(s string) bool {
	switch constants.EventStatus(s) {
	case constants.EventStatusScheduled, constants.EventStatusDone, constants.EventStatusCancelled:
		return true
	}
	return false
}

// EventRequest carries the writable fields of an event
type EventRequest struct {
	CarID             *string    `json:"car_id"`
	ProjectID         *string    `json:"project_id"`
	Title             *string    `json:"title"`
	Type              *string    `json:"type"`
	Status            *string    `json:"status"`
	StartAt           *time.Time `json:"start_at"`
	EndAt             *time.Time `json:"end_at"`
	AllDay            *bool      `json:"all_day"`
	Location          *string    `json:"location"`
	AssigneeContactID *string    `json:"assignee_contact_id"`
	Description       *string    `json:"description"`
	ReminderMinutes   *int       `json:"reminder_minutes"`
}

func (s *EventService) checkRefs(ctx context.Context, carID, projectID, assigneeID *string) error {
	if carID != nil && *carID != "" {
		car, err := s.cars.GetByID(ctx, *carID)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if car == nil {
			return errors.NewNotFoundError("Car", *carID)
		}
	}
	if projectID != nil && *projectID != "" {
		p, err := s.projects.GetByID(ctx, *projectID)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if p == nil {
			return errors.NewNotFoundError("Project", *projectID)
		}
	}
	if assigneeID != nil && *assigneeID != "" {
		c, err := s.contacts.GetByID(ctx, *assigneeID)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if c == nil {
			return errors.NewNotFoundError("Contact", *assigneeID)
		}
	}
	return nil
}

// CreateEvent adds a calendar entry
func (s *EventService) CreateEvent(ctx context.Context, req EventRequest) (*models.Event, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.NewValidationError("title", "Title is required")
	}
	if req.StartAt == nil {
		return nil, errors.NewValidationError("start_at", "Start time is required")
	}
	if req.EndAt != nil && req.EndAt.Before(*req.StartAt) {
		return nil, errors.NewValidationError("end_at", "End time cannot precede start time")
	}
	if req.ReminderMinutes != nil && *req.ReminderMinutes < 0 {
		return nil, errors.NewValidationError("reminder_minutes", "Reminder minutes cannot be negative")
	}

	eventType := string(constants.EventOther)
	if req.Type != nil && *req.Type != "" {
		if !isValidEventType(*req.Type) {
			return nil, errors.NewValidationError("type", fmt.Sprintf("Unknown event type: %s", *req.Type))
		}
		eventType = *req.Type
	}
	status := string(constants.EventStatusScheduled)
	if req.Status != nil && *req.Status != "" {
		if !isValidEventStatus(*req.Status) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		status = *req.Status
	}

	if err := s.checkRefs(ctx, req.CarID, req.ProjectID, req.AssigneeContactID); err != nil {
		return nil, err
	}

	allDay := false
	if req.AllDay != nil {
		allDay = *req.AllDay
	}

	e := &models.Event{
		ID:                utils.GenerateID(),
		CarID:             req.CarID,
		ProjectID:         req.ProjectID,
		Title:             *req.Title,
		Type:              eventType,
		Status:            status,
		StartAt:           *req.StartAt,
		EndAt:             req.EndAt,
		AllDay:            allDay,
		Location:          req.Location,
		AssigneeContactID: req.AssigneeContactID,
		Description:       req.Description,
		ReminderMinutes:   req.ReminderMinutes,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Printf("✅ Event created: %s (%s) at %s", e.Title, e.Type, e.StartAt.Format(time.RFC3339))
	return e, nil
}

// GetEvent fetches a single event
func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.NewNotFoundError("Event", id)
	}
	return e, nil
}

// ListEvents returns events matching the filter in chronological order
func (s *EventService) ListEvents(ctx context.Context, f persistence.EventFilter) ([]*models.Event, error) {
	if f.EventType != "" && !isValidEventType(f.EventType) {
		return nil, errors.NewValidationError("type", fmt.Sprintf("Unknown event type: %s", f.EventType))
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, errors.NewValidationError("to", "Range end cannot precede range start")
	}
	return s.events.List(ctx, f)
}

// UpcomingEvents returns events starting within the window from now
func (s *EventService) UpcomingEvents(ctx context.Context, window time.Duration) ([]*models.Event, error) {
	if window <= 0 {
		window = constants.UpcomingWindowDays * 24 * time.Hour
	}
	return s.events.Upcoming(ctx, time.Now(), window)
}

// UpdateEvent applies a partial update
func (s *EventService) UpdateEvent(ctx context.Context, id string, req EventRequest) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.NewNotFoundError("Event", id)
	}

	if err := s.checkRefs(ctx, req.CarID, req.ProjectID, req.AssigneeContactID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.CarID != nil {
		updates["car_id"] = nullable(*req.CarID)
	}
	if req.ProjectID != nil {
		updates["project_id"] = nullable(*req.ProjectID)
	}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}
	if req.Type != nil {
		if !isValidEventType(*req.Type) {
			return nil, errors.NewValidationError("type", fmt.Sprintf("Unknown event type: %s", *req.Type))
		}
		updates["event_type"] = *req.Type
	}
	if req.Status != nil {
		if !isValidEventStatus(*req.Status) {
			return nil, errors.NewValidationError("status", fmt.Sprintf("Unknown status: %s", *req.Status))
		}
		updates["status"] = *req.Status
	}
	if req.StartAt != nil {
		updates["start_at"] = *req.StartAt
	}
	if req.EndAt != nil {
		updates["end_at"] = *req.EndAt
	}
	if req.AllDay != nil {
		updates["all_day"] = *req.AllDay
	}
	if req.Location != nil {
		updates["location"] = nullable(*req.Location)
	}
	if req.AssigneeContactID != nil {
		updates["assignee_contact_id"] = nullable(*req.AssigneeContactID)
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.ReminderMinutes != nil {
		if *req.ReminderMinutes < 0 {
			return nil, errors.NewValidationError("reminder_minutes", "Reminder minutes cannot be negative")
		}
		updates["reminder_minutes"] = *req.ReminderMinutes
	}

	startAt := e.StartAt
	if req.StartAt != nil {
		startAt = *req.StartAt
	}
	endAt := e.EndAt
	if req.EndAt != nil {
		endAt = req.EndAt
	}
	if endAt != nil && endAt.Before(startAt) {
		return nil, errors.NewValidationError("end_at", "End time cannot precede start time")
	}

	if len(updates) == 0 {
		return e, nil
	}
	if err := s.events.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return s.events.GetByID(ctx, id)
}

// DeleteEvent removes a calendar entry
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return errors.NewNotFoundError("Event", id)
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	log.Printf("🗑️ Event deleted: %s", e.Title)
	return nil
}

// ProcessDueReminders enqueues a reminder event for every calendar entry
// whose reminder window has opened. MarkReminderSent only fires once per
// event, so a sweep that races another leaves a single reminder.
func (s *EventService) ProcessDueReminders(ctx context.Context) error {
	due, err := s.events.DueReminders(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to find due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	sent := 0
	for _, e := range due {
		claimed, err := s.events.MarkReminderSent(ctx, e.ID, time.Now())
		if err != nil {
			log.Printf("⚠️ Failed to mark reminder sent for event %s: %v", e.ID, err)
			continue
		}
		if !claimed {
			continue
		}
		payload := EventPayload{
			Entity:   "event",
			EntityID: e.ID,
			Detail: map[string]interface{}{
				"title":    e.Title,
				"type":     e.Type,
				"start_at": e.StartAt.Format(time.RFC3339),
			},
		}
		if e.AssigneeContactID != nil {
			payload.Detail["assignee_contact_id"] = *e.AssigneeContactID
		}
		if err := s.outbox.EnqueueEvent(ctx, constants.EventReminderDue, payload); err != nil {
			log.Printf("⚠️ Failed to enqueue reminder for event %s: %v", e.ID, err)
			continue
		}
		sent++
	}

	log.Printf("⏰ Reminder sweep: %d of %d due reminders sent", sent, len(due))
	return nil
}
