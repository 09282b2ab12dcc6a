// Package events publishes hub activity on NATS for downstream
// consumers (alerting, analytics). Publishing is best-effort: a broken
// or absent broker never fails the triggering request.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/argusone/argus-server/internal/models"
)

// Publisher publishes hub heartbeats and device events. A nil Publisher
// or one without a connection drops everything silently.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher creates a publisher over an established NATS connection.
// nc may be nil when NATS is not configured.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// PublishHeartbeat publishes a hub heartbeat on
// tenant.<id>.hub.<serial>.heartbeat.
func (p *Publisher) PublishHeartbeat(hub *models.Hub) {
	subject := fmt.Sprintf("tenant.%d.hub.%s.heartbeat", hub.TenantID, hub.HubSerial)
	p.publish(subject, hub)
}

// PublishEvent publishes a device-reported event on
// tenant.<id>.hub.<serial>.event.
func (p *Publisher) PublishEvent(event *models.Event) {
	subject := fmt.Sprintf("tenant.%d.hub.%s.event", event.TenantID, event.HubSerial)
	p.publish(subject, event)
}

func (p *Publisher) publish(subject string, payload interface{}) {
	if p == nil || p.nc == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to marshal event payload")
		return
	}

	if err := p.nc.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}
