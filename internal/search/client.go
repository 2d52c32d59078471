// Package search wraps the OpenSearch client used by alarm and enrichment
// modules and by the module run log.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/redelk-project/alarmd/internal/hits"
)

// Config holds OpenSearch connection settings.
type Config struct {
	URL      string
	Username string
	Password string
	Insecure bool
}

// Client is a thin wrapper over the OpenSearch client exposing the two
// operations the daemon needs: searching hits and indexing documents.
type Client struct {
	os *opensearch.Client
}

// New creates an OpenSearch client. It does not contact the cluster; call
// Ping to verify connectivity.
func New(cfg Config) (*Client, error) {
	transport := &http.Transport{}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &Client{os: client}, nil
}

// Ping verifies the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.os.Info(c.os.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch returned error: %s", res.Status())
	}
	return nil
}

// Search executes query against index and returns the matched hits along
// with the reported total.
func (c *Client) Search(ctx context.Context, index string, query map[string]any, size int) ([]*hits.Hit, int, error) {
	if size <= 0 {
		size = 1000
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, 0, fmt.Errorf("encode query: %w", err)
	}

	res, err := c.os.Search(
		c.os.Search.WithContext(ctx),
		c.os.Search.WithIndex(index),
		c.os.Search.WithBody(&buf),
		c.os.Search.WithSize(size),
		c.os.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Index  string         `json:"_index"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	out := make([]*hits.Hit, 0, len(searchResult.Hits.Hits))
	for _, h := range searchResult.Hits.Hits {
		out = append(out, &hits.Hit{ID: h.ID, Index: h.Index, Source: h.Source})
	}
	return out, searchResult.Hits.Total.Value, nil
}

// UpdateDoc applies a partial update to an existing document.
func (c *Client) UpdateDoc(ctx context.Context, index, id string, fields map[string]any) error {
	body, err := json.Marshal(map[string]any{"doc": fields})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	res, err := c.os.Update(
		index,
		id,
		bytes.NewReader(body),
		c.os.Update.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("update error: %s", res.String())
	}
	return nil
}

// WriteTags persists each hit's tag list back to its source document. The
// alarm and enrichment modules dedup on these tags, so they must survive the
// process: a tag that only lives on an in-memory hit would make every
// invocation re-alarm on the same documents. Per-document failures do not
// stop the remaining writes.
func (c *Client) WriteTags(ctx context.Context, hs []*hits.Hit) error {
	var errs []error
	for _, h := range hs {
		if h == nil || h.ID == "" || h.Index == "" {
			continue
		}
		if err := c.UpdateDoc(ctx, h.Index, h.ID, map[string]any{"tags": h.Tags()}); err != nil {
			errs = append(errs, fmt.Errorf("hit %s: %w", h.ID, err))
		}
	}
	return errors.Join(errs...)
}

// IndexDoc stores doc in index under the given document id.
func (c *Client) IndexDoc(ctx context.Context, index, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := c.os.Index(
		index,
		bytes.NewReader(body),
		c.os.Index.WithContext(ctx),
		c.os.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}
