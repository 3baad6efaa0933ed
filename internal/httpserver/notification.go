package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	middleware "github.com/Skotchmaster/beauty_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/beauty_shop/pkg/tokens"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type NotificationHTTP struct {
	Svc *service.NotificationService
}

// subject resolves :userId and checks that the caller is that user or an
// admin. Errors are ready to return.
func subject(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	caller, err := GetID(c)
	if err != nil {
		return uuid.Nil, unauthorized(l, event, err)
	}
	target, err := paramID(c, "userId")
	if err != nil {
		return uuid.Nil, badRequest(l, event, "user id is not a uuid", err)
	}
	if target != caller && c.Get(middleware.ContextRole) != tokens.RoleAdmin {
		l.Warn(event, "status", 403, "reason", "foreign user", "user_id", target)
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "not allowed")
	}
	return target, nil
}

func (h *NotificationHTTP) UserNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.list")

	userID, err := subject(c, l, "list_notifications_error")
	if err != nil {
		return err
	}

	list, err := h.Svc.ForUser(ctx, userID)
	if err != nil {
		return fail(l, "list_notifications_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "notifications": list})
}

func (h *NotificationHTTP) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.unread_count")

	userID, err := subject(c, l, "unread_count_error")
	if err != nil {
		return err
	}

	n, err := h.Svc.UnreadCount(ctx, userID)
	if err != nil {
		return fail(l, "unread_count_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "count": n})
}

func (h *NotificationHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_read")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "mark_read_error", err)
	}
	id, err := paramID(c, "notificationId")
	if err != nil {
		return badRequest(l, "mark_read_error", "notification id is not a uuid", err)
	}

	n, err := h.Svc.MarkRead(ctx, userID, id)
	if err != nil {
		return fail(l, "mark_read_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "notification": n})
}

func (h *NotificationHTTP) Send(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.send")

	var req transport.SendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "send_notification_error", "invalid body", err)
	}

	n, err := h.Svc.Send(ctx, req)
	if err != nil {
		return fail(l, "send_notification_error", err)
	}

	l.Info("send_notification_success", "target", req.Target, "recipients", n)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "sent": n})
}
