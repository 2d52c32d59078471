// Package tor enriches redirector traffic originating from Tor exit nodes.
// It fetches the public exit-address list and reports the matching untagged
// traffic documents; the pipeline tags them as the enrichment side channel.
package tor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/search"
)

const (
	name      = "tor"
	submodule = "enrich_tor"

	defaultIndex    = "redirtraffic-*"
	defaultExitList = "https://check.torproject.org/exit-addresses"
	httpTimeout     = 15 * time.Second
	maxHits         = 10000
)

func init() {
	module.Register(module.Registration{
		Info: module.Info{
			Name:        name,
			Submodule:   submodule,
			Description: "Tags redirector traffic originating from Tor exit nodes",
			Role:        module.RoleEnrich,
		},
		NewEnricher: New,
	})
}

// Enricher correlates traffic source addresses against the Tor exit list.
type Enricher struct {
	search  *search.Client
	client  *http.Client
	exitURL string
	index   string
	log     *logging.Logger
}

// New creates the tor enrichment unit.
func New(deps *module.Deps) (module.Enricher, error) {
	if deps == nil || deps.Search == nil {
		return nil, errors.New("tor: search client is required")
	}

	exitURL := defaultExitList
	index := defaultIndex
	if deps.Config != nil {
		exitURL = deps.Config.EnrichSetting(name, "exit_list_url", defaultExitList)
		index = deps.Config.EnrichSetting(name, "index", defaultIndex)
	}

	log := deps.Logger
	if log == nil {
		log = logging.Default()
	}

	return &Enricher{
		search:  deps.Search,
		client:  &http.Client{Timeout: httpTimeout},
		exitURL: exitURL,
		index:   index,
		log:     log.With(logging.Module(name)),
	}, nil
}

// Run fetches the exit-node list and reports untagged traffic hits whose
// source address is an exit node.
func (e *Enricher) Run(ctx context.Context) (*hits.ResultSet, error) {
	exits, err := e.fetchExitNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("tor: fetch exit list: %w", err)
	}
	e.log.Debug("fetched tor exit nodes", "count", len(exits))
	if len(exits) == 0 {
		return hits.Empty(), nil
	}

	addrs := make([]any, 0, len(exits))
	for _, ip := range exits {
		addrs = append(addrs, ip)
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"terms": map[string]any{"source.ip": addrs}},
				},
				"must_not": []any{
					map[string]any{"match": map[string]any{"tags": submodule}},
				},
			},
		},
	}

	hs, _, err := e.search.Search(ctx, e.index, query, maxHits)
	if err != nil {
		return nil, fmt.Errorf("tor: search %s: %w", e.index, err)
	}

	return &hits.ResultSet{
		Hits:      hits.HitList{Total: len(hs), Hits: hs},
		Mutations: map[string]hits.Mutation{},
	}, nil
}

func (e *Enricher) fetchExitNodes(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.exitURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", e.exitURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exit list returned status %d", resp.StatusCode)
	}

	return parseExitAddresses(resp.Body)
}

// parseExitAddresses extracts the addresses from "ExitAddress <ip> <ts>"
// lines of the Tor exit-address list format.
func parseExitAddresses(r io.Reader) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "ExitAddress" {
			continue
		}
		ip := fields[1]
		if _, dup := seen[ip]; dup {
			continue
		}
		seen[ip] = struct{}{}
		out = append(out, ip)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan exit list: %w", err)
	}
	return out, nil
}
