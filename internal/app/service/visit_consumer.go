package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
	infraprometheus "github.com/Vanjivaka-Sairam/url-shortener/internal/infra/prometheus"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// VisitConsumer consumes visit events from NATS JetStream, classifies
// them and appends them to the visit log. It is the async half of the
// fire-and-forget contract: failures here are logged and retried via
// redelivery, never observed by the redirect caller.
type VisitConsumer struct {
	js         nats.JetStreamContext
	logger     *zap.Logger
	classifier *Classifier
	links      repository.LinkRepository
	visits     repository.VisitRepository
}

// NewVisitConsumer creates a new visit event consumer.
func NewVisitConsumer(js nats.JetStreamContext, logger *zap.Logger, classifier *Classifier, links repository.LinkRepository, visits repository.VisitRepository) *VisitConsumer {
	return &VisitConsumer{js: js, logger: logger, classifier: classifier, links: links, visits: visits}
}

// Start ensures the stream and durable consumer exist and begins
// consuming visit events.
func (c *VisitConsumer) Start() error {
	_, err := c.js.StreamInfo(model.VisitStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.VisitStreamName,
			Subjects: []string{model.VisitStreamSubject},
			MaxBytes: model.VisitStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.VisitStreamName, model.VisitConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.VisitStreamName, &nats.ConsumerConfig{
			Durable:   model.VisitConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.VisitStreamSubject, model.VisitConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

// fetchErrorBackoff paces retries when the stream is unreachable so a
// NATS outage does not spin the fetch loop.
const fetchErrorBackoff = 2 * time.Second

func (c *VisitConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch visit events", zap.Error(err))
			time.Sleep(fetchErrorBackoff)
			continue
		}

		for _, msg := range msgs {
			var event model.VisitEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal visit event", zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.store(ctx, event); err != nil {
				c.logger.Error("failed to store visit",
					zap.String("id", event.ID),
					zap.String("short_code", event.ShortCode),
					zap.Error(err))
				msg.Nak()
				continue
			}

			msg.Ack()
		}
	}
}

// store classifies the raw event and appends the visit atomically with
// the click counter. Events for links deleted since the redirect are
// dropped: there is no log left to append to.
func (c *VisitConsumer) store(ctx context.Context, event model.VisitEvent) error {
	link, err := c.links.FindByCode(ctx, event.ShortCode)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			c.logger.Warn("dropping visit for vanished link",
				zap.String("id", event.ID),
				zap.String("short_code", event.ShortCode))
			return nil
		}
		return err
	}

	visit := c.classifier.Classify(event.UserAgent, event.SourceAddress)
	// The visit happened at redirect time, not at consumption time.
	visit.Timestamp = event.Timestamp

	if err := c.visits.AppendAtomic(ctx, link.ID, &visit); err != nil {
		return err
	}

	infraprometheus.VisitsRecorded.Inc()
	c.logger.Debug("visit recorded",
		zap.String("id", event.ID),
		zap.String("short_code", event.ShortCode),
		zap.String("device", visit.DeviceClass),
		zap.String("browser", visit.BrowserFamily),
		zap.Time("timestamp", visit.Timestamp),
	)
	return nil
}
