// Package slack delivers alarm notifications to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
)

const (
	name      = "slack"
	submodule = "connector_slack"

	httpTimeout = 10 * time.Second
	// maxGroups caps how many hit groups one message enumerates; Slack
	// truncates oversized attachments anyway.
	maxGroups = 20
)

func init() {
	module.Register(module.Registration{
		Info: module.Info{
			Name:        name,
			Submodule:   submodule,
			Description: "Sends alarm notifications to a Slack incoming webhook",
			Role:        module.RoleConnector,
		},
		NewConnector: New,
	})
}

// Connector posts alarm payloads to a Slack webhook.
type Connector struct {
	webhookURL string
	client     *http.Client
	log        *logging.Logger
}

// New creates the slack connector unit. The webhook URL is required.
func New(deps *module.Deps) (module.Connector, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("slack: configuration is required")
	}
	webhookURL := deps.Config.NotificationSetting(name, "webhook_url", "")
	if webhookURL == "" {
		return nil, errors.New("slack: webhook_url is not configured")
	}

	log := deps.Logger
	if log == nil {
		log = logging.Default()
	}

	return &Connector{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
		log:        log.With(logging.Connector(name)),
	}, nil
}

// SendAlarm posts one message summarizing the grouped alarm hits.
func (c *Connector) SendAlarm(ctx context.Context, payload *hits.AlarmPayload) error {
	body, err := json.Marshal(buildMessage(payload))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(p *hits.AlarmPayload) map[string]any {
	fields := []map[string]any{
		{"title": "Alarm", "value": p.Alarm, "short": true},
		{"title": "Hits", "value": fmt.Sprintf("%d", p.Total), "short": true},
	}
	if len(p.GroupBy) > 0 {
		fields = append(fields, map[string]any{
			"title": "Grouped by",
			"value": strings.Join(p.GroupBy, ", "),
			"short": true,
		})
	}

	for i, g := range p.Groups {
		if i == maxGroups {
			fields = append(fields, map[string]any{
				"title": "Truncated",
				"value": fmt.Sprintf("%d more groups omitted", len(p.Groups)-maxGroups),
				"short": false,
			})
			break
		}
		fields = append(fields, map[string]any{
			"title": groupTitle(g),
			"value": fmt.Sprintf("%d hits", len(g.Hits)),
			"short": false,
		})
	}

	return map[string]any{
		"text": fmt.Sprintf("🚨 Alarm: %s (%d hits)", p.Alarm, p.Total),
		"attachments": []map[string]any{
			{
				"color":  "#FF0000",
				"fields": fields,
				"footer": "RedELK alarm daemon",
				"ts":     time.Now().Unix(),
			},
		},
	}
}

func groupTitle(g *hits.HitGroup) string {
	if len(g.Key) == 0 {
		return "hit"
	}
	fields := make([]string, 0, len(g.Key))
	for f := range g.Key {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+"="+g.Key[f])
	}
	return strings.Join(parts, " ")
}
