// Package pipeline runs the staged alarm flow: enrichment modules first,
// then alarm modules, then dispatch of processed alarms to notification
// connectors. Stages are strictly sequential and each module failure is
// contained to its own descriptor.
package pipeline

import (
	"context"
	"fmt"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/runlog"
)

// Scheduler decides whether a module is eligible to run in this invocation.
type Scheduler interface {
	ShouldRun(ctx context.Context, name string, role module.Role) bool
	MarkRun(ctx context.Context, name string, role module.Role)
}

// Recorder persists module run outcomes.
type Recorder interface {
	ModuleDidRun(ctx context.Context, e runlog.Entry) error
}

// TagWriter persists hit tags back to the search backend. Tagging is the
// dedup and correlation side channel: without write-back every invocation
// would alarm on the same documents again.
type TagWriter interface {
	WriteTags(ctx context.Context, hs []*hits.Hit) error
}

// Enablement is the read-only module enablement configuration injected at
// construction. A name absent from a map is disabled.
type Enablement struct {
	Alarms        map[string]bool
	Notifications map[string]bool
}

// Pipeline owns one pass over the registered modules.
type Pipeline struct {
	registry   *module.Registry
	sched      Scheduler
	recorder   Recorder
	tags       TagWriter
	enablement Enablement
	deps       *module.Deps
	log        *logging.Logger
}

// New creates a pipeline over the given registry. A nil scheduler means
// every module is always eligible; a nil tag writer disables persistence.
func New(registry *module.Registry, sched Scheduler, recorder Recorder, tags TagWriter, enablement Enablement, deps *module.Deps, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.Default()
	}
	if deps == nil {
		deps = &module.Deps{}
	}
	if sched == nil {
		sched = alwaysEligible{}
	}
	return &Pipeline{
		registry:   registry,
		sched:      sched,
		recorder:   recorder,
		tags:       tags,
		enablement: enablement,
		deps:       deps,
		log:        log,
	}
}

// alwaysEligible is the scheduler fallback when no cooldown state exists.
type alwaysEligible struct{}

func (alwaysEligible) ShouldRun(context.Context, string, module.Role) bool { return true }

func (alwaysEligible) MarkRun(context.Context, string, module.Role) {}

// Run executes one full pass: enrichment, alarms, dispatch. Enrichment
// always completes before any alarm runs; all alarms finish before dispatch
// begins. The only error returned is context cancellation between stages.
func (p *Pipeline) Run(ctx context.Context) error {
	p.runEnrichments(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	p.runAlarms(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	p.dispatchAlarms(ctx)
	return ctx.Err()
}

// supervise invokes a module run and converts a panic into an error, so no
// module failure unwinds past its own descriptor.
func supervise(ctx context.Context, run func(context.Context) (*hits.ResultSet, error)) (rs *hits.ResultSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module panicked: %v", r)
		}
	}()
	return run(ctx)
}

func (p *Pipeline) record(ctx context.Context, e runlog.Entry) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.ModuleDidRun(ctx, e); err != nil {
		p.log.Warn("failed to record module run",
			logging.Module(e.Module), logging.Stage(e.Stage), logging.Error(err))
	}
}

// persistTags writes the hits' tag lists back to their source documents.
// A write failure is logged but never fails the owning module: the next
// invocation simply sees the documents untagged and processes them again.
func (p *Pipeline) persistTags(ctx context.Context, name string, hs []*hits.Hit) {
	if p.tags == nil || len(hs) == 0 {
		return
	}
	if err := p.tags.WriteTags(ctx, hs); err != nil {
		p.log.Error("failed to persist hit tags",
			logging.Module(name), logging.Hits(len(hs)), logging.Error(err))
	}
}

func (p *Pipeline) failModule(ctx context.Context, d *module.Descriptor, stage, msg string) {
	p.log.Error(msg, logging.Module(d.Name), logging.Stage(stage))
	p.record(ctx, runlog.Entry{
		Module:  d.Name,
		Stage:   stage,
		Outcome: runlog.OutcomeError,
		Message: msg,
	})
	d.Status = module.StatusError
	d.LastError = msg
}
