// Package filehash alarms on file indicators seen in implant traffic that
// have not been alarmed on before.
package filehash

import (
	"context"
	"errors"
	"fmt"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/search"
)

const (
	name      = "filehash"
	submodule = "alarm_filehash"

	defaultIndex     = "rtops-*"
	defaultHashField = "file.hash.md5"
	maxHits          = 10000
)

func init() {
	module.Register(module.Registration{
		Info: module.Info{
			Name:        name,
			Submodule:   submodule,
			Description: "Alarms on file hashes observed in implant traffic that were not alarmed on before",
			Role:        module.RoleAlarm,
		},
		NewAlarm: New,
	})
}

// Alarm queries the implant index for untagged documents carrying a file
// hash and reports them with the hash as mutation context.
type Alarm struct {
	search    *search.Client
	index     string
	hashField string
	log       *logging.Logger
}

// New creates the filehash alarm unit.
func New(deps *module.Deps) (module.Alarm, error) {
	if deps == nil || deps.Search == nil {
		return nil, errors.New("filehash: search client is required")
	}

	index := defaultIndex
	hashField := defaultHashField
	if deps.Config != nil {
		index = deps.Config.AlarmSetting(name, "index", defaultIndex)
		hashField = deps.Config.AlarmSetting(name, "hash_field", defaultHashField)
	}

	log := deps.Logger
	if log == nil {
		log = logging.Default()
	}

	return &Alarm{
		search:    deps.Search,
		index:     index,
		hashField: hashField,
		log:       log.With(logging.Module(name)),
	}, nil
}

// Run searches for hash-bearing documents not yet tagged by this alarm.
func (a *Alarm) Run(ctx context.Context) (*hits.ResultSet, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"exists": map[string]any{"field": a.hashField}},
				},
				"must_not": []any{
					map[string]any{"match": map[string]any{"tags": submodule}},
				},
			},
		},
	}

	hs, _, err := a.search.Search(ctx, a.index, query, maxHits)
	if err != nil {
		return nil, fmt.Errorf("filehash: search %s: %w", a.index, err)
	}

	rs := &hits.ResultSet{
		Hits:      hits.HitList{Total: len(hs), Hits: hs},
		Mutations: make(map[string]hits.Mutation, len(hs)),
		GroupBy:   []string{a.hashField},
	}
	for _, h := range hs {
		if v, ok := h.Field(a.hashField); ok {
			rs.Mutations[h.ID] = hits.Mutation{
				"hash":         fmt.Sprintf("%v", v),
				"source_index": h.Index,
			}
		}
	}

	a.log.Debug("filehash query finished", logging.Index(a.index), logging.Hits(len(hs)))
	return rs, nil
}
