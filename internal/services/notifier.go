package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/arnold/stakegoals-api/internal/lifecycle"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier delivers lifecycle notices: it stores them as notifications,
// pushes them to the user's device and sends them to open websockets.
type Notifier struct {
	db   *gorm.DB
	push *PushService
	hub  *Hub
}

// NewNotifier wires the delivery channels. push and hub may be nil.
func NewNotifier(db *gorm.DB, push *PushService, hub *Hub) *Notifier {
	return &Notifier{db: db, push: push, hub: hub}
}

func (n *Notifier) Notify(ctx context.Context, notice lifecycle.Notice) {
	notif := models.Notification{
		UserID: notice.UserID,
		Type:   notice.Type,
		Title:  notice.Title,
		Body:   notice.Body,
	}

	var pushData map[string]string
	if notice.Metadata != nil {
		if data, err := json.Marshal(notice.Metadata); err == nil {
			s := string(data)
			notif.Metadata = &s
		}
		pushData = make(map[string]string, len(notice.Metadata)+1)
		for k, v := range notice.Metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
		pushData["type"] = notice.Type
	}

	if err := n.db.WithContext(ctx).Create(&notif).Error; err != nil {
		log.Printf("notify: failed to store %q for user %s: %v", notice.Title, notice.UserID, err)
	}

	if n.hub != nil {
		n.hub.Send(notice.UserID, Event{Type: EventNotification, GoalID: goalID(notice), Data: notif})
		// open dashboards refetch the goal on this
		if notice.GoalID != uuid.Nil {
			n.hub.Send(notice.UserID, Event{Type: EventGoalUpdated, GoalID: goalID(notice), Data: notice.Type})
		}
	}

	if n.push.Enabled() {
		var user models.User
		if err := n.db.WithContext(ctx).Select("fcm_token").First(&user, "id = ?", notice.UserID).Error; err != nil {
			return
		}
		// delivery outlives the request that triggered it
		go n.push.Send(context.Background(), user.FCMToken, notice.Title, notice.Body, pushData)
	}
}

func goalID(n lifecycle.Notice) string {
	if n.GoalID == uuid.Nil {
		return ""
	}
	return n.GoalID.String()
}
