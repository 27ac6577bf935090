package api

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dutyChannelPrefix = "fleetcomp:duty:"

// RedisBroker distributes duty events across processes via Redis pub/sub.
type RedisBroker struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisBroker connects to the Redis at url (redis://...).
func NewRedisBroker(url string, log *zap.Logger) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBroker{rdb: redis.NewClient(opt), log: log}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, dutyChannelPrefix+ev.DriverID, body).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, driverID string) (<-chan Event, func(), error) {
	var ps *redis.PubSub
	if driverID == "" {
		ps = b.rdb.PSubscribe(ctx, dutyChannelPrefix+"*")
	} else {
		ps = b.rdb.Subscribe(ctx, dutyChannelPrefix+driverID)
	}
	out := make(chan Event, 32)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("bad duty event payload", zap.Error(err))
				continue
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()
	cancel := func() { _ = ps.Close() }
	return out, cancel, nil
}

func (b *RedisBroker) Close() error { return b.rdb.Close() }
