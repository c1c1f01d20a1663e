package service

import (
	"encoding/json"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// VisitPublisher publishes raw visit events to NATS JetStream. It is
// the resolver's VisitSink: the redirect path hands the event off here
// and never waits for persistence.
type VisitPublisher struct {
	js nats.JetStreamContext
}

// NewVisitPublisher creates a new visit event publisher.
func NewVisitPublisher(js nats.JetStreamContext) *VisitPublisher {
	return &VisitPublisher{js: js}
}

// Record publishes one visit event to the stream, stamped with the
// redirect time.
func (p *VisitPublisher) Record(shortCode, sourceAddress, userAgent string) error {
	event := model.VisitEvent{
		ID:            uuid.New().String(),
		ShortCode:     shortCode,
		SourceAddress: sourceAddress,
		UserAgent:     userAgent,
		Timestamp:     time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.VisitStreamSubject, data)
	return err
}
