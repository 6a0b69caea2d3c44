package pubsub

import (
	"context"
	"fmt"
	"log/slog"
)

// SubscribeAudit logs every room event at info level. It is the bus's
// only consumer in the server process.
func SubscribeAudit(ctx context.Context, sub Subscriber, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit")

	for _, event := range RoomEvents {
		handler := func(ctx context.Context, msg Message) error {
			payload, err := event.Decode(msg)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "Room event",
				"topic", msg.Topic,
				"participant", payload.Participant,
				"message_id", payload.MessageID,
				"at", payload.At)
			return nil
		}
		if err := sub.Subscribe(ctx, event.Name(), handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", event.Name(), err)
		}
	}
	return nil
}
