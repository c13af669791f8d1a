package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// RedisBroadcaster fans messages out across processes over a Redis pub/sub
// channel. Publishers and subscribers may live in different binaries; the
// payload type T crosses the wire as JSON.
type RedisBroadcaster[T any] struct {
	client     *goredis.Client
	channel    string
	bufferSize int

	mu     sync.Mutex
	subs   map[*redisSubscriber[T]]struct{}
	closed bool
}

// NewRedisBroadcaster creates a broadcaster on the given pub/sub channel.
func NewRedisBroadcaster[T any](client *goredis.Client, channel string, bufferSize int) *RedisBroadcaster[T] {
	return &RedisBroadcaster[T]{
		client:     client,
		channel:    channel,
		bufferSize: max(bufferSize, 1),
		subs:       make(map[*redisSubscriber[T]]struct{}),
	}
}

// Broadcast publishes the message to every subscriber across processes.
func (b *RedisBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("broadcast: marshal message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("broadcast: publish: %w", err)
	}
	return nil
}

// Subscribe opens a Redis subscription and pumps decoded messages into the
// returned subscriber. Cancelling ctx or closing the subscriber stops the
// pump. Undecodable payloads are dropped.
func (b *RedisBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	pubsub := b.client.Subscribe(ctx, b.channel)
	sub := &redisSubscriber[T]{
		subscriber: newSubscriber[T](b.bufferSize),
		pubsub:     pubsub,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = sub.Close()
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
			_ = sub.Close()
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var data T
				if err := json.Unmarshal([]byte(raw.Payload), &data); err != nil {
					continue
				}
				sub.send(Message[T]{Data: data})
			}
		}
	}()

	return sub
}

// Close shuts down every open subscription.
func (b *RedisBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*redisSubscriber[T], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

type redisSubscriber[T any] struct {
	*subscriber[T]
	pubsub *goredis.PubSub

	closeOnce sync.Once
	closeErr  error
}

func (s *redisSubscriber[T]) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.pubsub.Close()
		_ = s.subscriber.Close()
	})
	return s.closeErr
}
