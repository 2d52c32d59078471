package module

import (
	"sort"

	"github.com/redelk-project/alarmd/internal/logging"
)

// Registry classifies module registrations into three role-keyed descriptor
// maps. Classification never aborts: a registration missing the required
// surface is skipped, a duplicate keeps the first registration.
type Registry struct {
	alarms     map[string]*Descriptor
	connectors map[string]*Descriptor
	enrichers  map[string]*Descriptor
	log        *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Default()
	}
	return &Registry{
		alarms:     make(map[string]*Descriptor),
		connectors: make(map[string]*Descriptor),
		enrichers:  make(map[string]*Descriptor),
		log:        log,
	}
}

// Load classifies the given registrations, initializing every accepted
// descriptor to StatusPending.
func (r *Registry) Load(regs []Registration) {
	for _, reg := range regs {
		d, bucket, ok := r.classify(reg)
		if !ok {
			continue
		}
		if _, exists := bucket[d.Name]; exists {
			r.log.Warn("duplicate module registration ignored",
				logging.Module(d.Name), logging.Role(string(reg.Info.Role)))
			continue
		}
		bucket[d.Name] = d
		r.log.Debug("module registered",
			logging.Module(d.Name), logging.Role(string(reg.Info.Role)))
	}
}

func (r *Registry) classify(reg Registration) (*Descriptor, map[string]*Descriptor, bool) {
	if reg.Info.Name == "" {
		r.log.Debug("skipping module registration without a name")
		return nil, nil, false
	}

	var bucket map[string]*Descriptor
	switch reg.Info.Role {
	case RoleAlarm:
		if reg.NewAlarm == nil {
			r.log.Debug("skipping alarm module without a runnable unit", logging.Module(reg.Info.Name))
			return nil, nil, false
		}
		bucket = r.alarms
	case RoleConnector:
		if reg.NewConnector == nil {
			r.log.Debug("skipping connector module without a connector unit", logging.Module(reg.Info.Name))
			return nil, nil, false
		}
		bucket = r.connectors
	case RoleEnrich:
		if reg.NewEnricher == nil {
			r.log.Debug("skipping enrichment module without a runnable unit", logging.Module(reg.Info.Name))
			return nil, nil, false
		}
		bucket = r.enrichers
	default:
		r.log.Debug("skipping module with unknown role",
			logging.Module(reg.Info.Name), logging.Role(string(reg.Info.Role)))
		return nil, nil, false
	}

	info := reg.Info
	if info.Submodule == "" {
		info.Submodule = info.Name
	}

	return &Descriptor{
		Name:         info.Name,
		Info:         info,
		Status:       StatusPending,
		registration: reg,
	}, bucket, true
}

// Alarms returns the alarm descriptor map.
func (r *Registry) Alarms() map[string]*Descriptor { return r.alarms }

// Connectors returns the connector descriptor map.
func (r *Registry) Connectors() map[string]*Descriptor { return r.connectors }

// Enrichers returns the enrichment descriptor map.
func (r *Registry) Enrichers() map[string]*Descriptor { return r.enrichers }

// AlarmNames returns alarm module names in lexicographic order. Stages
// iterate in this order so runs are deterministic across hosts.
func (r *Registry) AlarmNames() []string { return sortedNames(r.alarms) }

// ConnectorNames returns connector module names in lexicographic order.
func (r *Registry) ConnectorNames() []string { return sortedNames(r.connectors) }

// EnrichNames returns enrichment module names in lexicographic order.
func (r *Registry) EnrichNames() []string { return sortedNames(r.enrichers) }

func sortedNames(m map[string]*Descriptor) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
