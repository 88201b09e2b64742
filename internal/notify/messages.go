// Package notify delivers user-visible alerts.
package notify

import (
	"context"
	"fmt"
	"time"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"
)

// RedirectFailed builds the alert for a failed dispatch.
func RedirectFailed(ev models.DownloadEvent, cause error) models.Notification {
	return models.Notification{
		ID:        notificationID(consts.NotifyIDRedirectPrefix, ev.ID),
		Title:     consts.NotifyRedirectFailedTitle,
		Message:   fmt.Sprintf(consts.NotifyRedirectFailedMsg, cause.Error()),
		CreatedAt: time.Now(),
	}
}

// FilterFailed builds the alert for a failing custom filter script.
func FilterFailed(ev models.DownloadEvent, cause error) models.Notification {
	return models.Notification{
		ID:        notificationID(consts.NotifyIDFilterPrefix, ev.ID),
		Title:     consts.NotifyFilterFailedTitle,
		Message:   fmt.Sprintf(consts.NotifyFilterFailedMsg, ev.Filename, cause.Error()),
		CreatedAt: time.Now(),
	}
}

// Send delivers n, logging delivery failures. A nil notifier drops the alert.
func Send(ctx context.Context, notifier contracts.Notifier, n models.Notification) {
	if notifier == nil {
		logger.Pl.D(1, "No notifier configured, dropping %q", n.ID)
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		logger.Pl.W("Failed to deliver notification %q: %v", n.ID, err)
	}
}

// notificationID keys an alert by download id, falling back to the current time.
func notificationID(prefix, downloadID string) string {
	if downloadID == "" {
		return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
	}
	return prefix + downloadID
}
