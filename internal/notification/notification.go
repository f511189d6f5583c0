package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeStreakMilestone NotificationType = "streak_milestone"
	TypeStreakRisk      NotificationType = "streak_risk"
	TypeWeeklySummary   NotificationType = "weekly_summary"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	Data      map[string]any   `json:"data" db:"data"`
	ReadAt    *time.Time       `json:"read_at" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type CreateNotificationRequest struct {
	UserID uuid.UUID        `json:"user_id"`
	Type   NotificationType `json:"type"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	Data   map[string]any   `json:"data"`
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	TotalCount    int             `json:"total_count"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
