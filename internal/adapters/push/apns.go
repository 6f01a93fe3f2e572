package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"

	"grubio/internal/domain"
)

// APNsConfig configures token-based (.p8) authentication with Apple Push Notification service.
type APNsConfig struct {
	KeyFile    string
	KeyID      string
	TeamID     string
	BundleID   string
	Production bool
}

type apnsClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

type apnsPusher struct {
	client apnsClient
	topic  string
}

// NewAPNs returns a Pusher for iOS devices.
func NewAPNs(cfg APNsConfig) (domain.Pusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load apns key: %w", err)
	}
	client := apns2.NewTokenClient(&token.Token{AuthKey: authKey, KeyID: cfg.KeyID, TeamID: cfg.TeamID})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return &apnsPusher{client: client, topic: cfg.BundleID}, nil
}

func (p *apnsPusher) Push(ctx context.Context, device *domain.Device, title, body string, data map[string]string) error {
	pl := payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default")
	for k, v := range data {
		pl = pl.Custom(k, v)
	}
	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: device.Token,
		Topic:       p.topic,
		Payload:     pl,
	})
	if err != nil {
		return fmt.Errorf("apns push: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}
