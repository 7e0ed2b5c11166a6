package services

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushService sends push notifications via Firebase Cloud Messaging.
type PushService struct {
	client *messaging.Client
}

// NewPush initializes the Firebase push service. It never fails: without a
// service account, or when Firebase cannot be reached, it returns a service
// whose sends are no-ops.
func NewPush(ctx context.Context, serviceAccountPath string) *PushService {
	if serviceAccountPath == "" {
		log.Println("FCM: No service account configured, push notifications disabled")
		return &PushService{}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Printf("FCM: Failed to initialize Firebase app: %v", err)
		return &PushService{}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("FCM: Failed to get messaging client: %v", err)
		return &PushService{}
	}

	log.Println("FCM: Push notifications enabled")
	return &PushService{client: client}
}

// Enabled reports whether pushes are actually delivered.
func (p *PushService) Enabled() bool {
	return p != nil && p.client != nil
}

// Send pushes one message to a device token. No-op when push is disabled or
// the token is empty.
func (p *PushService) Send(ctx context.Context, token, title, body string, data map[string]string) {
	if !p.Enabled() || token == "" {
		return
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := p.client.Send(ctx, msg); err != nil {
		log.Printf("FCM: Failed to send %q: %v", title, err)
	}
}
