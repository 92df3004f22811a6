package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/archivist/internal/domain"
)

// SignalService fans realtime events out over redis pub/sub so every
// replica's websocket clients see them.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event any) error {
	ctx, span := tracer.Start(ctx, "Signal.Service.Publish")
	defer span.End()

	jsonstr, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to encode event")
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to publish event")
	}

	return nil
}

// Subscribe delivers raw event payloads of the given channels until ctx is
// done. The returned channel is closed on exit. At least one channel is
// required.
func (s *SignalService) Subscribe(ctx context.Context, channels ...string) (<-chan []byte, error) {
	if len(channels) == 0 {
		return nil, domain.ArgumentError{Field: "channels"}
	}
	pubsub := s.rdb.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrap(err, "failed to subscribe")
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	slog.DebugContext(
		ctx, "subscribed",
		slog.Any("channels", channels),
		slog.String("module", "signal"),
	)
	return out, nil
}
