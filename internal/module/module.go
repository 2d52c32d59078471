// Package module defines the plugin contract of the alarm daemon: the three
// module roles, their capability interfaces, and the registry that
// classifies registered modules into role-keyed descriptor maps.
package module

import (
	"context"

	"github.com/redelk-project/alarmd/internal/config"
	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/search"
)

// Role classifies a module's purpose in the pipeline.
type Role string

const (
	RoleAlarm     Role = "redelk_alarm"
	RoleConnector Role = "redelk_connector"
	RoleEnrich    Role = "redelk_enrich"
)

// Info describes a module.
type Info struct {
	// Name is the module's registry key, e.g. "filehash".
	Name string
	// Submodule is the tag written onto hits produced or dispatched by this
	// module, e.g. "alarm_filehash".
	Submodule string
	// Description is a one-line human readable summary.
	Description string
	// Role declares the module's place in the pipeline.
	Role Role
}

// Alarm is a module that detects conditions worth alarming on.
type Alarm interface {
	Run(ctx context.Context) (*hits.ResultSet, error)
}

// Enricher is a module that augments stored documents as a side effect and
// reports the hits it touched.
type Enricher interface {
	Run(ctx context.Context) (*hits.ResultSet, error)
}

// Connector is a module that delivers a processed alarm to an external
// notification target.
type Connector interface {
	SendAlarm(ctx context.Context, payload *hits.AlarmPayload) error
}

// Deps is the collaborator bundle handed to module factories. Modules are
// instantiated fresh for every run and must not assume state survives
// between invocations.
type Deps struct {
	Search *search.Client
	Config *config.Config
	Logger *logging.Logger
}
