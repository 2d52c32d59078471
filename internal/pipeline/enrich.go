package pipeline

import (
	"context"
	"fmt"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/runlog"
)

const stageEnrich = "enrich"

// runEnrichments runs every eligible enrichment module. Each produced hit is
// tagged with the module's submodule name; downstream stages never read
// enrichment results directly, the tags are the side channel.
func (p *Pipeline) runEnrichments(ctx context.Context) {
	p.log.Info("running enrichment modules")

	enrichers := p.registry.Enrichers()
	for _, name := range p.registry.EnrichNames() {
		d := enrichers[name]
		if !p.sched.ShouldRun(ctx, name, module.RoleEnrich) {
			p.log.Debug("enrichment not due, skipping", logging.Module(name))
			continue
		}

		res, err := supervise(ctx, func(ctx context.Context) (*hits.ResultSet, error) {
			unit, err := d.NewEnricher(p.deps)
			if err != nil {
				return nil, err
			}
			return unit.Run(ctx)
		})
		p.sched.MarkRun(ctx, name, module.RoleEnrich)
		if err != nil {
			p.failModule(ctx, d, stageEnrich, fmt.Sprintf("Error running enrichment %s: %v", name, err))
			continue
		}
		if res == nil {
			res = hits.Empty()
		}

		d.Result = res.Clone()
		hits.SetTags(d.Info.Submodule, d.Result.Hits.Hits)
		p.persistTags(ctx, name, d.Result.Hits.Hits)

		n := len(d.Result.Hits.Hits)
		p.record(ctx, runlog.Entry{
			Module:   name,
			Stage:    stageEnrich,
			Outcome:  runlog.OutcomeSuccess,
			Message:  fmt.Sprintf("Enriched %d documents", n),
			HitCount: n,
		})
		d.Status = module.StatusSuccess
		p.log.Info("enrichment finished", logging.Module(name), logging.Hits(n))
	}
}
