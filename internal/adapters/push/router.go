package push

import (
	"context"
	"log/slog"

	"grubio/internal/domain"
)

// Router sends each push through the Pusher registered for the device's platform.
// Devices on platforms without a Pusher are skipped.
type Router struct {
	pushers map[string]domain.Pusher
	logger  *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	return &Router{pushers: make(map[string]domain.Pusher), logger: logger}
}

// Handle registers p for platform ("ios", "android").
func (r *Router) Handle(platform string, p domain.Pusher) {
	r.pushers[platform] = p
}

// Enabled reports whether any platform has a Pusher.
func (r *Router) Enabled() bool { return len(r.pushers) > 0 }

func (r *Router) Push(ctx context.Context, device *domain.Device, title, body string, data map[string]string) error {
	p, ok := r.pushers[device.Platform]
	if !ok {
		r.logger.DebugContext(ctx, "no pusher for platform", "platform", device.Platform, "device_id", device.ID)
		return nil
	}
	return p.Push(ctx, device, title, body, data)
}
