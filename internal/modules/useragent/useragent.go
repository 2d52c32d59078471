// Package useragent alarms on redirector traffic whose user agent appears
// on a blocklist of known scanner and tooling signatures.
package useragent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/search"
)

const (
	name      = "useragent"
	submodule = "alarm_useragent"

	defaultIndex = "redirtraffic-*"
	defaultField = "http.request.useragent"
	maxHits      = 10000
)

// defaultBlocklist covers the tooling signatures worth alarming on out of
// the box; operators extend it via the "useragents" setting.
var defaultBlocklist = []string{
	"curl",
	"wget",
	"python-requests",
	"nikto",
	"sqlmap",
	"nmap",
	"masscan",
}

func init() {
	module.Register(module.Registration{
		Info: module.Info{
			Name:        name,
			Submodule:   submodule,
			Description: "Alarms on redirector traffic with blocklisted user agents",
			Role:        module.RoleAlarm,
		},
		NewAlarm: New,
	})
}

// Alarm queries redirector traffic for blocklisted user agents.
type Alarm struct {
	search    *search.Client
	index     string
	field     string
	blocklist []string
	log       *logging.Logger
}

// New creates the useragent alarm unit.
func New(deps *module.Deps) (module.Alarm, error) {
	if deps == nil || deps.Search == nil {
		return nil, errors.New("useragent: search client is required")
	}

	index := defaultIndex
	field := defaultField
	blocklist := defaultBlocklist
	if deps.Config != nil {
		index = deps.Config.AlarmSetting(name, "index", defaultIndex)
		field = deps.Config.AlarmSetting(name, "field", defaultField)
		if raw := deps.Config.AlarmSetting(name, "useragents", ""); raw != "" {
			blocklist = splitList(raw)
		}
	}

	log := deps.Logger
	if log == nil {
		log = logging.Default()
	}

	return &Alarm{
		search:    deps.Search,
		index:     index,
		field:     field,
		blocklist: blocklist,
		log:       log.With(logging.Module(name)),
	}, nil
}

// Run searches for untagged traffic matching the blocklist and groups the
// findings by source address.
func (a *Alarm) Run(ctx context.Context) (*hits.ResultSet, error) {
	terms := make([]any, 0, len(a.blocklist))
	for _, ua := range a.blocklist {
		terms = append(terms, ua)
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"terms": map[string]any{a.field: terms}},
				},
				"must_not": []any{
					map[string]any{"match": map[string]any{"tags": submodule}},
				},
			},
		},
	}

	hs, _, err := a.search.Search(ctx, a.index, query, maxHits)
	if err != nil {
		return nil, fmt.Errorf("useragent: search %s: %w", a.index, err)
	}

	a.log.Debug("useragent query finished", logging.Index(a.index), logging.Hits(len(hs)))
	return &hits.ResultSet{
		Hits:      hits.HitList{Total: len(hs), Hits: hs},
		Mutations: map[string]hits.Mutation{},
		GroupBy:   []string{"source.ip"},
	}, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
