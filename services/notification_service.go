package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitPilotAPI/internal/notification"
)

// PushProvider delivers notifications to registered devices. FCM in
// production; nil when push credentials are not configured.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(provider PushProvider) {
	s.pushProvider = provider
}

func (s *NotificationService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	dataJSON, _ := json.Marshal(req.Data)

	query := `
		INSERT INTO notifications (id, user_id, type, title, body, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, user_id, type, title, body, data, read_at, created_at
	`

	notif := &notification.Notification{}
	var dataStr string

	err := s.db.QueryRow(
		ctx, query,
		uuid.New(), req.UserID, req.Type, req.Title, req.Body, dataJSON,
	).Scan(
		&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body,
		&dataStr, &notif.ReadAt, &notif.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	json.Unmarshal([]byte(dataStr), &notif.Data)

	if s.pushProvider != nil {
		go s.dispatchPush(context.Background(), notif)
	}

	return notif, nil
}

func (s *NotificationService) dispatchPush(ctx context.Context, notif *notification.Notification) {
	tokens, err := s.getDeviceTokens(ctx, notif.UserID)
	if err != nil {
		log.Printf("Push dispatch: failed to load device tokens for user %s: %v", notif.UserID, err)
		return
	}

	if err := s.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Body, notif.Data); err != nil {
		log.Printf("Push dispatch: failed for notification %s: %v", notif.ID, err)
	}
}

func (s *NotificationService) getDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	whereClause := "WHERE user_id = $1"
	if unreadOnly {
		whereClause += " AND read_at IS NULL"
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, body, data, read_at, created_at
		FROM notifications
		%s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, whereClause)

	rows, err := s.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		notif := &notification.Notification{}
		var dataStr string
		err := rows.Scan(
			&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body,
			&dataStr, &notif.ReadAt, &notif.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(dataStr), &notif.Data)
		notifications = append(notifications, notif)
	}

	var unreadCount, totalCount int
	s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL", userID).Scan(&unreadCount)
	s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1", userID).Scan(&totalCount)

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		TotalCount:    totalCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return 0, err
	}

	var unreadCount int
	query := "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL"
	err = s.db.QueryRow(ctx, query, userID).Scan(&unreadCount)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return unreadCount, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
		UPDATE notifications
		SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`
	result, err := s.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found or already read")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`
	_, err = s.db.Exec(ctx, query, userID)
	return err
}

func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req notification.RegisterDeviceRequest) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	if req.Token == "" {
		return fmt.Errorf("device token is required")
	}

	query := `
		INSERT INTO device_tokens (user_id, token, platform, registered_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token)
		DO UPDATE SET user_id = $1, platform = $3, registered_at = NOW()
	`
	_, err = s.db.Exec(ctx, query, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
