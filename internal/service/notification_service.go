package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dealagent-be/internal/dto"
	"dealagent-be/internal/pkg/logger"
	"dealagent-be/pkg/events"
	pktNats "dealagent-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.Notification)
	Broadcast(notification dto.Notification)
}

// NotificationService turns bus events into real-time client notifications.
// Notifications are not persisted; delivery is best-effort to currently
// connected clients.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects carry the stream prefix; the event type is the last part.
	eventType := strings.TrimPrefix(event.EventType(), "events.")
	payload := event.Payload()

	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", eventType), map[string]interface{}{"type": eventType})

	switch eventType {
	case "DOCUMENT_ANALYZED":
		userID, ok := extractUserID(payload)
		if !ok {
			s.logger.Warn("NotificationService", "DOCUMENT_ANALYZED event without user_id", payload)
			return nil
		}
		action, _ := payload["action"].(string)
		s.delivery.Send(userID, dto.Notification{
			Id:        uuid.New(),
			UserId:    userID,
			Type:      eventType,
			Title:     "Analysis complete",
			Message:   fmt.Sprintf("Your proposal has been evaluated. Verdict: %s", action),
			Data:      payload,
			CreatedAt: time.Now(),
		})

	case "USER_LOGIN":
		userID, ok := extractUserID(payload)
		if !ok {
			return nil
		}
		device, _ := payload["device"].(string)
		s.delivery.Send(userID, dto.Notification{
			Id:        uuid.New(),
			UserId:    userID,
			Type:      eventType,
			Title:     "New login",
			Message:   fmt.Sprintf("A new login to your account was detected (%s)", device),
			CreatedAt: time.Now(),
		})

	case "SYSTEM_BROADCAST":
		title, _ := payload["title"].(string)
		message, _ := payload["message"].(string)
		s.delivery.Broadcast(dto.Notification{
			Id:        uuid.New(),
			Type:      eventType,
			Title:     title,
			Message:   message,
			CreatedAt: time.Now(),
		})

	default:
		s.logger.Info("NotificationService", "Ignoring event type", map[string]interface{}{"type": eventType})
	}

	return nil
}

func extractUserID(payload map[string]interface{}) (uuid.UUID, bool) {
	raw, ok := payload["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
