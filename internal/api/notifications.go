package api

import (
	"context"
	"net/http"

	"socialnet/internal/entities"
)

// ListNotifications returns one page of notifications, newest first.
func (a *API) ListNotifications(ctx context.Context, p entities.PageRequest) (entities.Page[entities.Notification], error) {
	var out entities.Page[entities.Notification]
	err := a.http.Do(ctx, http.MethodGet, "notifications", pageQuery(p), nil, &out)
	return out, err
}

// MarkNotificationRead flags a notification as read.
func (a *API) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	return a.http.Do(ctx, http.MethodPatch, "notifications/"+id(notificationID)+"/read", nil, nil, nil)
}

// GetNotificationSetting returns the current notification preferences.
func (a *API) GetNotificationSetting(ctx context.Context) (entities.NotificationSetting, error) {
	var out entities.NotificationSetting
	err := a.http.Do(ctx, http.MethodGet, "notifications/settings", nil, nil, &out)
	return out, err
}

// UpdateNotificationSetting replaces the notification preferences.
func (a *API) UpdateNotificationSetting(ctx context.Context, s entities.NotificationSetting) (entities.NotificationSetting, error) {
	var out entities.NotificationSetting
	err := a.http.Do(ctx, http.MethodPut, "notifications/settings", nil, s, &out)
	return out, err
}
