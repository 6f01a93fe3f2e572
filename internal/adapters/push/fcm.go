package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"grubio/internal/domain"
)

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type fcmPusher struct {
	client fcmClient
}

// NewFCM returns a Pusher for Android devices using Firebase Cloud Messaging.
func NewFCM(ctx context.Context, projectID, credentialsFile string) (domain.Pusher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}
	return &fcmPusher{client: client}, nil
}

func (p *fcmPusher) Push(ctx context.Context, device *domain.Device, title, body string, data map[string]string) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Token:        device.Token,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		return fmt.Errorf("fcm push: %w", err)
	}
	return nil
}
