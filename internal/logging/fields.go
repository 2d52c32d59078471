package logging

import "log/slog"

// Common field names for consistent logging across the daemon.
const (
	FieldModule    = "module"
	FieldSubmodule = "submodule"
	FieldRole      = "role"
	FieldStage     = "stage"
	FieldConnector = "connector"
	FieldHits      = "hits"
	FieldIndex     = "index"
	FieldError     = "error"
)

// Module returns a slog attribute for a module name.
func Module(name string) slog.Attr {
	return slog.String(FieldModule, name)
}

// Submodule returns a slog attribute for a module's submodule name.
func Submodule(name string) slog.Attr {
	return slog.String(FieldSubmodule, name)
}

// Role returns a slog attribute for a module role.
func Role(role string) slog.Attr {
	return slog.String(FieldRole, role)
}

// Stage returns a slog attribute for a pipeline stage.
func Stage(stage string) slog.Attr {
	return slog.String(FieldStage, stage)
}

// Connector returns a slog attribute for a connector name.
func Connector(name string) slog.Attr {
	return slog.String(FieldConnector, name)
}

// Hits returns a slog attribute for a hit count.
func Hits(n int) slog.Attr {
	return slog.Int(FieldHits, n)
}

// Index returns a slog attribute for a search index name.
func Index(index string) slog.Attr {
	return slog.String(FieldIndex, index)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
