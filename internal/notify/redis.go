package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/driverlink-backend/internal/booking"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PoolChannel is the Redis channel that receives pool change events.
const PoolChannel = "booking:pool:updates"

const eventBufferSize = 64

// NewRedisClient connects to the Redis server at url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// PoolEvent is published whenever the set of offered bookings changes.
type PoolEvent struct {
	Version     uint64    `json:"version"`
	BookingIDs  []string  `json:"booking_ids"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher is the subset of the Redis client used for publishing.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher forwards pool changes to Redis so other instances and
// services can follow the pool. It implements booking.Listener; publishing
// happens on the goroutine running Run.
type RedisPublisher struct {
	client Publisher
	logger *zap.Logger
	events chan PoolEvent

	mu      sync.Mutex
	version uint64
	lastIDs []string
}

func NewRedisPublisher(client Publisher, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{
		client: client,
		logger: logger.Named("redis_publisher"),
		events: make(chan PoolEvent, eventBufferSize),
	}
}

// BookingsChanged implements booking.Listener. It never blocks; events are
// dropped when the buffer is full.
func (p *RedisPublisher) BookingsChanged(s booking.Snapshot) {
	ids := bookingIDs(booking.AvailableToClaim(s.Bookings, ""))

	p.mu.Lock()
	if s.Version <= p.version {
		p.mu.Unlock()
		return
	}
	p.version = s.Version
	if slices.Equal(ids, p.lastIDs) {
		p.mu.Unlock()
		return
	}
	p.lastIDs = ids
	p.mu.Unlock()

	event := PoolEvent{
		Version:     s.Version,
		BookingIDs:  ids,
		PublishedAt: time.Now().UTC(),
	}

	select {
	case p.events <- event:
	default:
		p.logger.Warn("pool event dropped", zap.Uint64("version", s.Version))
	}
}

// Run publishes queued events until ctx is done.
func (p *RedisPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.events:
			if err := p.publish(ctx, event); err != nil {
				p.logger.Error("failed to publish pool event",
					zap.Uint64("version", event.Version),
					zap.Error(err))
			}
		}
	}
}

func (p *RedisPublisher) publish(ctx context.Context, event PoolEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, PoolChannel, data).Err()
}
