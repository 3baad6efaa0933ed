package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"gorm.io/gorm"
)

var (
	ErrValidation          = errors.New("validation")            // 400
	ErrNotFound            = errors.New("not found")             // 404
	ErrConflict            = errors.New("conflict")              // 409
	ErrPaymentNotCompleted = errors.New("payment not completed") // 400
	ErrGateway             = errors.New("payment gateway unavailable")
	ErrCartSync            = errors.New("cart not cleared")
)

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

// publish never fails the calling operation; a lost event is only logged.
func publish(ctx context.Context, p events.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "key", key, "error", err)
	}
}
