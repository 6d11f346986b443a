package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ScanConsumer drains raw scans from NATS JetStream and hands them to the
// recorder for enrichment and persistence.
type ScanConsumer struct {
	js       nats.JetStreamContext
	logger   *zap.Logger
	recorder *ScanRecorder
}

// NewScanConsumer creates a new scan event consumer
func NewScanConsumer(js nats.JetStreamContext, logger *zap.Logger, recorder *ScanRecorder) *ScanConsumer {
	return &ScanConsumer{js: js, logger: logger, recorder: recorder}
}

// Start ensures stream and consumer exist, then begins consuming.
func (c *ScanConsumer) Start() error {
	// Create stream if not exists
	_, err := c.js.StreamInfo(model.ScanStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ScanStreamName,
			Subjects: []string{model.ScanStreamSubject},
			MaxBytes: model.ScanStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	// Create consumer if not exists
	_, err = c.js.ConsumerInfo(model.ScanStreamName, model.ScanConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ScanStreamName, &nats.ConsumerConfig{
			Durable:   model.ScanConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ScanStreamSubject, model.ScanConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *ScanConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var raw model.RawScan
			if err := json.Unmarshal(msg.Data, &raw); err != nil {
				c.logger.Error("failed to unmarshal scan event", zap.Error(err))
				msg.Nak()
				continue
			}

			event, err := c.recorder.Record(ctx, raw)
			if err != nil {
				c.logger.Error("failed to store scan event",
					zap.String("id", raw.ID),
					zap.String("link_id", raw.LinkID),
					zap.Error(err))
				msg.Nak()
				continue
			}

			c.logger.Debug("scan event stored",
				zap.String("id", event.ID),
				zap.String("link_id", event.LinkID),
				zap.String("country", event.Country),
				zap.String("device", event.DeviceType),
				zap.Time("scanned_at", event.ScannedAt),
			)

			msg.Ack()
		}
	}
}
