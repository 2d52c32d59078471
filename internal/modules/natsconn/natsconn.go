// Package natsconn publishes alarm payloads to a NATS subject so other
// services can consume alarms as a message stream.
package natsconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
)

const (
	name      = "nats"
	submodule = "connector_nats"

	defaultSubject = "redelk.alarms"
	connectTimeout = 5 * time.Second
)

func init() {
	module.Register(module.Registration{
		Info: module.Info{
			Name:        name,
			Submodule:   submodule,
			Description: "Publishes alarm payloads to a NATS subject",
			Role:        module.RoleConnector,
		},
		NewConnector: New,
	})
}

// Connector publishes one message per dispatched alarm. The connection is
// opened per send: connector units are instantiated fresh for every alarm
// and hold no cross-run state.
type Connector struct {
	url     string
	subject string
	log     *logging.Logger
}

// New creates the NATS connector unit.
func New(deps *module.Deps) (module.Connector, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("nats: configuration is required")
	}
	url := deps.Config.NotificationSetting(name, "url", nats.DefaultURL)
	subject := deps.Config.NotificationSetting(name, "subject", defaultSubject)

	log := deps.Logger
	if log == nil {
		log = logging.Default()
	}

	return &Connector{
		url:     url,
		subject: subject,
		log:     log.With(logging.Connector(name)),
	}, nil
}

// SendAlarm publishes the payload as JSON and flushes before closing.
func (c *Connector) SendAlarm(ctx context.Context, payload *hits.AlarmPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("nats: marshal payload: %w", err)
	}

	nc, err := nats.Connect(c.url,
		nats.Name("alarmd"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return fmt.Errorf("nats: connect %s: %w", c.url, err)
	}
	defer nc.Close()

	if err := nc.Publish(c.subject, body); err != nil {
		return fmt.Errorf("nats: publish %s: %w", c.subject, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats: flush: %w", err)
	}

	c.log.Debug("alarm published", "subject", c.subject, logging.Hits(payload.Total))
	return nil
}
