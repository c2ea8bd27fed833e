package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Handler processes one decoded event. Returning an error leaves the
// message un-ACKed so the group redelivers it.
type Handler func(ctx context.Context, event Event) error

// Subscriber reads a redis stream through a consumer group and hands each
// event to a Handler.
type Subscriber struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	handler  Handler
}

func NewSubscriber(client *redis.Client, stream, group, consumer string, handler Handler) *Subscriber {
	return &Subscriber{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		handler:  handler,
	}
}

// Run blocks until ctx is cancelled, creating the consumer group on first
// use.
func (s *Subscriber) Run(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"stream": s.stream,
		"group":  s.group,
	}).Info("Event subscriber started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.readBatch(ctx); err != nil {
				logrus.WithField("stream", s.stream).Errorf("failed to read events: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Subscriber) readBatch(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.handleMessage(ctx, message); err != nil {
				logrus.WithField("message", message.ID).Errorf("failed to process event: %v", err)
				continue
			}
			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				logrus.WithField("message", message.ID).Errorf("failed to ack event: %v", err)
			}
		}
	}
	return nil
}

func (s *Subscriber) handleMessage(ctx context.Context, message redis.XMessage) error {
	payload, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return s.handler(ctx, event)
}
