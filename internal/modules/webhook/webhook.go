// Package webhook delivers alarm payloads as JSON to a generic HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
)

const (
	name      = "webhook"
	submodule = "connector_webhook"

	httpTimeout = 10 * time.Second
	userAgent   = "alarmd/1.0"
)

func init() {
	module.Register(module.Registration{
		Info: module.Info{
			Name:        name,
			Submodule:   submodule,
			Description: "Posts alarm payloads as JSON to a configured HTTP endpoint",
			Role:        module.RoleConnector,
		},
		NewConnector: New,
	})
}

// Connector posts the raw alarm payload to a configured URL.
type Connector struct {
	url    string
	client *http.Client
	log    *logging.Logger
}

// New creates the webhook connector unit. The target URL is required.
func New(deps *module.Deps) (module.Connector, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("webhook: configuration is required")
	}
	url := deps.Config.NotificationSetting(name, "url", "")
	if url == "" {
		return nil, errors.New("webhook: url is not configured")
	}

	log := deps.Logger
	if log == nil {
		log = logging.Default()
	}

	return &Connector{
		url:    url,
		client: &http.Client{Timeout: httpTimeout},
		log:    log.With(logging.Connector(name)),
	}, nil
}

// SendAlarm posts the payload. Any non-2xx response is an error.
func (c *Connector) SendAlarm(ctx context.Context, payload *hits.AlarmPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
