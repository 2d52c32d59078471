// Package hits defines the result documents exchanged between alarm,
// enrichment and notification modules, plus the tagging, mutation-merge
// and grouping helpers the pipeline applies to them.
package hits

import (
	"slices"
	"strings"
)

// Mutation is supplementary data merged into a specific hit before
// notification, keyed by hit id in a ResultSet.
type Mutation = map[string]any

// Hit is one matched document from the search backend. The pipeline never
// inspects it beyond its id, its tags and mutation application; semantic
// extraction is the producing module's responsibility.
type Hit struct {
	ID     string         `json:"_id"`
	Index  string         `json:"_index"`
	Source map[string]any `json:"_source"`
}

// HitList carries the hits of a module run. Total equals len(Hits) at
// production time; grouping produces a separate payload and never rewrites
// the original count.
type HitList struct {
	Total int    `json:"total"`
	Hits  []*Hit `json:"hits"`
}

// ResultSet is the structured output of one alarm or enrichment module run.
type ResultSet struct {
	Hits      HitList             `json:"hits"`
	Mutations map[string]Mutation `json:"mutations"`
	GroupBy   []string            `json:"groupby"`
}

// HitGroup is one bucket of hits sharing the same values for the grouping
// fields declared by an alarm.
type HitGroup struct {
	Key  map[string]string `json:"key"`
	Hits []*Hit            `json:"hits"`
}

// AlarmPayload is what connectors receive for one triggered alarm: the
// grouped hits plus the original total.
type AlarmPayload struct {
	Alarm     string      `json:"alarm"`
	Submodule string      `json:"submodule"`
	Total     int         `json:"total"`
	GroupBy   []string    `json:"groupby"`
	Groups    []*HitGroup `json:"groups"`
}

// Empty returns a ResultSet with no hits, no mutations and no grouping.
func Empty() *ResultSet {
	return &ResultSet{
		Hits:      HitList{Total: 0, Hits: []*Hit{}},
		Mutations: map[string]Mutation{},
	}
}

// Clone returns a deep copy of the hit.
func (h *Hit) Clone() *Hit {
	if h == nil {
		return nil
	}
	return &Hit{
		ID:     h.ID,
		Index:  h.Index,
		Source: cloneMap(h.Source),
	}
}

// Field looks up a dotted path in the hit source, e.g. "source.ip".
func (h *Hit) Field(path string) (any, bool) {
	if h == nil || h.Source == nil {
		return nil, false
	}
	var cur any = h.Source
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Tags returns the hit's tag list. Tags stored as []any (as decoded from
// JSON) are normalized to strings.
func (h *Hit) Tags() []string {
	if h == nil || h.Source == nil {
		return nil
	}
	switch tags := h.Source["tags"].(type) {
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy of the result set.
func (r *ResultSet) Clone() *ResultSet {
	if r == nil {
		return nil
	}
	out := &ResultSet{
		Hits:    HitList{Total: r.Hits.Total, Hits: make([]*Hit, 0, len(r.Hits.Hits))},
		GroupBy: slices.Clone(r.GroupBy),
	}
	for _, h := range r.Hits.Hits {
		out.Hits.Hits = append(out.Hits.Hits, h.Clone())
	}
	if r.Mutations != nil {
		out.Mutations = make(map[string]Mutation, len(r.Mutations))
		for id, m := range r.Mutations {
			out.Mutations[id] = cloneMap(m)
		}
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(val)
	default:
		return v
	}
}
