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

// NotificationService turns domain events into in-app notifications and
// serves each user's feed. It sits behind the outbox: events reach it via
// the bus after they are durably stored, so a crashed server never loses
// the notification, only delays it.
type NotificationService struct {
	notifications *persistence.NotificationRepository
	users         *persistence.UserRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications *persistence.NotificationRepository, users *persistence.UserRepository) *NotificationService {
	return &NotificationService{notifications: notifications, users: users}
}

// notificationText renders one event into feed copy
type notificationText struct {
	title string
	body  string
	link  string
}

func renderNotification(eventType EventType, p EventPayload) (notificationText, bool) {
	switch eventType {
	case constants.EventCarCreated:
		return notificationText{
			title: "Car added",
			body:  detailString(p, "display_name"),
			link:  "/cars/" + p.EntityID,
		}, true
	case constants.EventCarUpdated:
		body := "Details changed"
		if fields := detailStrings(p, "fields"); len(fields) > 0 {
			body = fmt.Sprintf("%d fields changed", len(fields))
		}
		return notificationText{
			title: "Car updated",
			body:  body,
			link:  "/cars/" + p.EntityID,
		}, true
	case constants.EventCarDeleted:
		return notificationText{
			title: "Car removed",
			body:  detailString(p, "display_name"),
		}, true
	case constants.EventImageUploaded:
		return notificationText{
			title: "Image uploaded",
			body:  detailString(p, "filename"),
			link:  "/images/" + p.EntityID,
		}, true
	case constants.EventImageAnalyzed:
		return notificationText{
			title: "Image analyzed",
			body:  detailString(p, "caption"),
			link:  "/images/" + p.EntityID,
		}, true
	case constants.EventInspectionDone:
		return notificationText{
			title: "Inspection completed",
			body:  fmt.Sprintf("%s: %s", detailString(p, "title"), detailString(p, "verdict")),
			link:  "/inspections/" + p.EntityID,
		}, true
	case constants.EventDeliverableStatus:
		return notificationText{
			title: "Deliverable status changed",
			body:  fmt.Sprintf("%s is now %s", detailString(p, "title"), detailString(p, "to")),
			link:  "/deliverables/" + p.EntityID,
		}, true
	case constants.EventReminderDue:
		return notificationText{
			title: "Event reminder",
			body:  fmt.Sprintf("%s at %s", detailString(p, "title"), detailString(p, "start_at")),
			link:  "/events/" + p.EntityID,
		}, true
	}
	return notificationText{}, false
}

// notifiedEvents is every event type that lands in user feeds
var notifiedEvents = []EventType{
	constants.EventCarCreated,
	constants.EventCarUpdated,
	constants.EventCarDeleted,
	constants.EventImageUploaded,
	constants.EventImageAnalyzed,
	constants.EventInspectionDone,
	constants.EventDeliverableStatus,
	constants.EventReminderDue,
}

// SubscribeTo registers this service on the bus for every notified event
func (s *NotificationService) SubscribeTo(bus *EventBus) {
	for _, eventType := range notifiedEvents {
		et := eventType
		bus.Subscribe(et, func(ctx context.Context, payload interface{}) error {
			return s.handleEvent(ctx, et, payload)
		})
	}
	log.Printf("🔔 Notification service subscribed to %d event types", len(notifiedEvents))
}

// handleEvent fans one event out to every active user except the actor.
// Per-recipient failures are logged, not returned: returning an error would
// make the outbox redeliver and duplicate the rows already written.
func (s *NotificationService) handleEvent(ctx context.Context, eventType EventType, payload interface{}) error {
	p, ok := payload.(EventPayload)
	if !ok {
		log.Printf("⚠️ Notification handler got unexpected payload type %T for %s", payload, eventType)
		return nil
	}
	text, ok := renderNotification(eventType, p)
	if !ok {
		return nil
	}

	recipients, err := s.activeRecipients(ctx, p.ActorID)
	if err != nil {
		log.Printf("⚠️ Could not load notification recipients: %v", err)
		return nil
	}

	written := 0
	for _, userID := range recipients {
		n := &models.Notification{
			ID:          utils.GenerateID(),
			RecipientID: userID,
			Title:       text.title,
			Body:        text.body,
			Kind:        eventType,
			CreatedAt:   time.Now(),
		}
		if text.link != "" {
			link := text.link
			n.Link = &link
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			log.Printf("⚠️ Failed to write notification for user %s: %v", userID, err)
			continue
		}
		written++
	}
	if written > 0 {
		log.Printf("🔔 %s notified %d users", eventType, written)
	}
	return nil
}

func (s *NotificationService) activeRecipients(ctx context.Context, actorID string) ([]string, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if !u.IsActive || u.ID == actorID {
			continue
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// ListNotifications returns a user's feed, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = constants.NotificationFeedLimit
	}
	if limit > constants.NotificationFeedMaxLimit {
		limit = constants.NotificationFeedMaxLimit
	}
	return s.notifications.ListByRecipient(ctx, recipientID, unreadOnly, limit)
}

// UnreadCount counts a user's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.notifications.UnreadCount(ctx, recipientID)
}

// MarkRead flags one notification as read. Scoped to the recipient so one
// user cannot clear another's feed.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	if !utils.IsValidUUID(id) {
		return errors.NewValidationError("id", "Invalid notification ID")
	}
	return s.notifications.MarkRead(ctx, id, recipientID)
}

// MarkAllRead flags the whole feed of a recipient as read
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.notifications.MarkAllRead(ctx, recipientID)
}

func detailString(p EventPayload, key string) string {
	if p.Detail == nil {
		return ""
	}
	if v, ok := p.Detail[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// detailStrings reads a list detail; JSON round-trips deliver []interface{}
func detailStrings(p EventPayload, key string) []string {
	if p.Detail == nil {
		return nil
	}
	v, ok := p.Detail[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
