package hits

import (
	"fmt"
	"slices"
	"strings"
)

// SetTags adds tag to every hit's tag list in place. Tags a hit already
// carries are not duplicated.
func SetTags(tag string, hs []*Hit) {
	if tag == "" {
		return
	}
	for _, h := range hs {
		if h == nil {
			continue
		}
		if h.Source == nil {
			h.Source = map[string]any{}
		}
		tags := h.Tags()
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
		h.Source["tags"] = tags
	}
}

// AddAlarmData merges mutation fields into the hit source under the alarm's
// submodule name. A nil mutation is treated the same as an empty one, so a
// hit id absent from a ResultSet's mutations still gets its alarm entry.
func AddAlarmData(h *Hit, m Mutation, alarmName string) *Hit {
	if h == nil || alarmName == "" {
		return h
	}
	if h.Source == nil {
		h.Source = map[string]any{}
	}
	entry, _ := h.Source[alarmName].(map[string]any)
	if entry == nil {
		entry = map[string]any{}
	}
	for k, v := range m {
		entry[k] = cloneValue(v)
	}
	h.Source[alarmName] = entry
	return h
}

// GroupHits partitions hits into buckets keyed by the listed fields' values,
// preserving the order in which each bucket is first seen. With no grouping
// fields every hit becomes its own group. A missing field contributes an
// empty value to the key.
func GroupHits(hs []*Hit, fields []string) []*HitGroup {
	if len(fields) == 0 {
		groups := make([]*HitGroup, 0, len(hs))
		for _, h := range hs {
			groups = append(groups, &HitGroup{Key: map[string]string{}, Hits: []*Hit{h}})
		}
		return groups
	}

	var order []string
	byKey := make(map[string]*HitGroup)
	for _, h := range hs {
		key := make(map[string]string, len(fields))
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			val := ""
			if v, ok := h.Field(f); ok && v != nil {
				val = fmt.Sprintf("%v", v)
			}
			key[f] = val
			parts = append(parts, f+"="+val)
		}
		ck := strings.Join(parts, "|")
		g, ok := byKey[ck]
		if !ok {
			g = &HitGroup{Key: key}
			byKey[ck] = g
			order = append(order, ck)
		}
		g.Hits = append(g.Hits, h)
	}

	groups := make([]*HitGroup, 0, len(order))
	for _, ck := range order {
		groups = append(groups, byKey[ck])
	}
	return groups
}
