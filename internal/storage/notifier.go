package storage

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/nikbrunner/bmark/internal/logger"
)

// Notifier carries "collection changed" signals between writers and live
// subscribers. Payloads are not transported; subscribers re-read the
// collection on every signal.
type Notifier interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(topic string, fn func()) (Cancel, error)
	Close() error
}

// LocalNotifier delivers signals within the current process.
type LocalNotifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func()
}

// NewLocalNotifier creates an in-process notifier.
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[string]map[int]func())}
}

// Publish calls every subscriber of topic synchronously.
func (n *LocalNotifier) Publish(_ context.Context, topic string) error {
	n.mu.RLock()
	fns := make([]func(), 0, len(n.subs[topic]))
	for _, fn := range n.subs[topic] {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

// Subscribe registers fn for topic.
func (n *LocalNotifier) Subscribe(topic string, fn func()) (Cancel, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.subs[topic] == nil {
		n.subs[topic] = make(map[int]func())
	}
	n.subs[topic][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[topic], id)
			if len(n.subs[topic]) == 0 {
				delete(n.subs, topic)
			}
		})
	}, nil
}

// Close drops all subscribers.
func (n *LocalNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = make(map[string]map[int]func())
	return nil
}

// RedisNotifier fans signals out over Redis pub/sub so several processes
// sharing one database see each other's writes.
type RedisNotifier struct {
	client *redis.Client
	log    logger.Logger
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(ctx context.Context, opts RedisOptions, log logger.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", opts.Addr)
	}
	return &RedisNotifier{client: client, log: log}, nil
}

// Publish sends a change signal on topic.
func (n *RedisNotifier) Publish(ctx context.Context, topic string) error {
	return errors.Wrap(n.client.Publish(ctx, topic, "changed").Err(), "redis publish")
}

// Subscribe listens on topic until the returned Cancel is called.
func (n *RedisNotifier) Subscribe(topic string, fn func()) (Cancel, error) {
	ctx := context.Background()
	ps := n.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Wrapf(err, "redis subscribe %s", topic)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ps.Channel() {
			fn()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := ps.Close(); err != nil {
				n.log.Warn("redis unsubscribe failed", logger.String("topic", topic), logger.Error(err))
			}
			<-done
		})
	}, nil
}

// Close shuts down the Redis client.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
