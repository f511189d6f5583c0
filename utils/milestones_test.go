package utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitPilotAPI/internal/notification"
)

type recordingNotifier struct {
	requests []*notification.CreateNotificationRequest
}

func (r *recordingNotifier) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	r.requests = append(r.requests, req)
	return &notification.Notification{ID: uuid.New()}, nil
}

func TestIsStreakMilestone(t *testing.T) {
	for _, milestone := range []int{3, 7, 14, 30, 60, 100, 365} {
		assert.True(t, IsStreakMilestone(milestone), "streak %d", milestone)
	}
	for _, other := range []int{0, 1, 2, 4, 15, 99, 364} {
		assert.False(t, IsStreakMilestone(other), "streak %d", other)
	}
}

func TestNotifyStreakMilestone(t *testing.T) {
	notifier := &recordingNotifier{}
	userID := uuid.New()

	NotifyStreakMilestone(notifier, userID, "Morning run", 7)

	require.Len(t, notifier.requests, 1)
	req := notifier.requests[0]
	assert.Equal(t, userID, req.UserID)
	assert.Equal(t, notification.TypeStreakMilestone, req.Type)
	assert.Equal(t, "7-day streak!", req.Title)
	assert.Contains(t, req.Body, "Morning run")
	assert.Equal(t, 7, req.Data["streak"])
}
