package module

import (
	"fmt"

	"github.com/redelk-project/alarmd/internal/hits"
)

// Status is the terminal outcome of one module's single run attempt in one
// invocation: Pending until the owning stage runs it, then Success or Error.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Descriptor holds metadata plus per-invocation status and result for one
// classified module. Descriptors are owned by the registry for the duration
// of a run and never shared across roles.
type Descriptor struct {
	Name   string
	Info   Info
	Status Status

	// Result is the module's cloned output; set at most once by the owning
	// stage, nil until then and forever for connectors.
	Result *hits.ResultSet

	// LastError carries the failure message when Status is StatusError.
	LastError string

	registration Registration
}

// NewAlarm instantiates the module's alarm unit.
func (d *Descriptor) NewAlarm(deps *Deps) (Alarm, error) {
	if d.registration.NewAlarm == nil {
		return nil, fmt.Errorf("module %s does not provide an alarm unit", d.Name)
	}
	return d.registration.NewAlarm(deps)
}

// NewEnricher instantiates the module's enrichment unit.
func (d *Descriptor) NewEnricher(deps *Deps) (Enricher, error) {
	if d.registration.NewEnricher == nil {
		return nil, fmt.Errorf("module %s does not provide an enrichment unit", d.Name)
	}
	return d.registration.NewEnricher(deps)
}

// NewConnector instantiates the module's connector unit.
func (d *Descriptor) NewConnector(deps *Deps) (Connector, error) {
	if d.registration.NewConnector == nil {
		return nil, fmt.Errorf("module %s does not provide a connector unit", d.Name)
	}
	return d.registration.NewConnector(deps)
}
