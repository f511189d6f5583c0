package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"habitPilotAPI/internal/notification"
)

// NotificationCreator is the slice of the notification service the milestone
// trigger needs, kept as an interface so callers are not tied to the full
// service.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

var streakMilestones = map[int]bool{
	3:   true,
	7:   true,
	14:  true,
	30:  true,
	60:  true,
	100: true,
	365: true,
}

func IsStreakMilestone(streakCount int) bool {
	return streakMilestones[streakCount]
}

// NotifyStreakMilestone records a milestone notification for the user.
// Best-effort: failures are logged, never surfaced to the completion request.
func NotifyStreakMilestone(notifier NotificationCreator, userID uuid.UUID, habitName string, streakCount int) {
	bgCtx := context.Background()

	req := &notification.CreateNotificationRequest{
		UserID: userID,
		Type:   notification.TypeStreakMilestone,
		Title:  fmt.Sprintf("%d-day streak!", streakCount),
		Body:   fmt.Sprintf("You've kept up %q for %d days in a row. Keep it going!", habitName, streakCount),
		Data: map[string]any{
			"habit_name": habitName,
			"streak":     streakCount,
		},
	}

	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create streak milestone notification for user %s: %v", userID, err)
	}
}
