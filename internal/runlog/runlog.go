// Package runlog records module run outcomes for observability. The primary
// recorder persists one document per run to an OpenSearch index, from which
// operators (and dashboards) read module health.
package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/search"
)

// Outcome of a module run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Entry is one recorded module run.
type Entry struct {
	Module    string    `json:"module"`
	Stage     string    `json:"stage"`
	Outcome   Outcome   `json:"outcome"`
	Message   string    `json:"message"`
	HitCount  int       `json:"hit_count"`
	Timestamp time.Time `json:"@timestamp"`
}

// OpenSearch records run entries in an OpenSearch index.
type OpenSearch struct {
	client *search.Client
	index  string
	log    *logging.Logger
}

// DefaultIndex is where module run documents are stored.
const DefaultIndex = "redelk-modules"

// NewOpenSearch creates an OpenSearch-backed recorder.
func NewOpenSearch(client *search.Client, index string, log *logging.Logger) *OpenSearch {
	if index == "" {
		index = DefaultIndex
	}
	if log == nil {
		log = logging.Default()
	}
	return &OpenSearch{client: client, index: index, log: log}
}

// ModuleDidRun stores one run entry. The document id is a fresh UUID.
func (r *OpenSearch) ModuleDidRun(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return r.client.IndexDoc(ctx, r.index, uuid.NewString(), e)
}

// LogOnly writes run entries to the logger instead of a backend. Used in
// development and tests.
type LogOnly struct {
	log *logging.Logger
}

// NewLogOnly creates a log-only recorder.
func NewLogOnly(log *logging.Logger) *LogOnly {
	if log == nil {
		log = logging.Default()
	}
	return &LogOnly{log: log}
}

// ModuleDidRun logs the entry and always succeeds.
func (r *LogOnly) ModuleDidRun(_ context.Context, e Entry) error {
	r.log.Info("module run recorded",
		logging.Module(e.Module),
		logging.Stage(e.Stage),
		"outcome", string(e.Outcome),
		"message", e.Message,
		logging.Hits(e.HitCount),
	)
	return nil
}
