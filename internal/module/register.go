package module

import "sync"

// Registration binds a module's Info to the factory matching its role.
// Exactly the factory for the declared role must be set; registrations that
// don't satisfy that surface are skipped during classification.
type Registration struct {
	Info         Info
	NewAlarm     func(*Deps) (Alarm, error)
	NewEnricher  func(*Deps) (Enricher, error)
	NewConnector func(*Deps) (Connector, error)
}

var (
	regMu         sync.Mutex
	registrations []Registration
)

// Register adds a module registration to the process-wide list. Built-in
// module packages call this from init(); the daemon entry point pulls them
// in via blank imports.
func Register(r Registration) {
	regMu.Lock()
	defer regMu.Unlock()
	registrations = append(registrations, r)
}

// Registered returns a copy of all module registrations.
func Registered() []Registration {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]Registration, len(registrations))
	copy(out, registrations)
	return out
}
