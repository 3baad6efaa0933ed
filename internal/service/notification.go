package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/google/uuid"
)

const (
	TargetAll      = "all"
	TargetSpecific = "specific"

	// NotificationFeedLimit caps the list returned to a user.
	NotificationFeedLimit = 50
)

type NotificationService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// Send stores the notification and returns how many rows were written. A
// broadcast is a single row without a user.
func (s *NotificationService) Send(ctx context.Context, req transport.SendNotificationRequest) (int, error) {
	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return 0, fmt.Errorf("%w: title and message are required", ErrValidation)
	}
	typ := strings.TrimSpace(req.Type)

	var batch []models.Notification
	switch req.Target {
	case TargetAll:
		batch = []models.Notification{{Title: title, Message: message, Type: typ}}
	case TargetSpecific:
		if len(req.UserIDs) == 0 {
			return 0, fmt.Errorf("%w: userIds are required for target %q", ErrValidation, TargetSpecific)
		}
		seen := make(map[uuid.UUID]bool, len(req.UserIDs))
		for _, id := range req.UserIDs {
			if id == uuid.Nil || seen[id] {
				continue
			}
			seen[id] = true
			id := id
			batch = append(batch, models.Notification{UserID: &id, Title: title, Message: message, Type: typ})
		}
		if len(batch) == 0 {
			return 0, fmt.Errorf("%w: no valid user ids", ErrValidation)
		}
	default:
		return 0, fmt.Errorf("%w: invalid target %q", ErrValidation, req.Target)
	}

	if err := s.Repo.CreateNotifications(ctx, batch); err != nil {
		return 0, err
	}
	publish(ctx, s.Events, events.TopicNotifications, req.Target, events.NotificationEvent{
		Type:       "notification_sent",
		Title:      title,
		Target:     req.Target,
		Recipients: len(batch),
	})
	return len(batch), nil
}

// Notify sends one notification to one user.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, typ string) error {
	_, err := s.Send(ctx, transport.SendNotificationRequest{
		Title:   title,
		Message: message,
		Type:    typ,
		Target:  TargetSpecific,
		UserIDs: []uuid.UUID{userID},
	})
	return err
}

func (s *NotificationService) ForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.Repo.ListNotifications(ctx, userID, NotificationFeedLimit)
}

// MarkRead fails with ErrNotFound for broadcasts and for notifications of
// other users.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	n, err := s.Repo.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		return nil, notFound(err, "notification %s", id)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.Repo.CountUnreadNotifications(ctx, userID)
}
