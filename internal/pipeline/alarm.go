package pipeline

import (
	"context"
	"fmt"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/runlog"
)

const stageAlarm = "alarm"

// runAlarms runs every eligible alarm module and records its raw result set
// on the descriptor. Tagging and mutation merging happen later, in dispatch,
// and only for enabled alarms.
func (p *Pipeline) runAlarms(ctx context.Context) {
	p.log.Info("running alarm modules")

	alarms := p.registry.Alarms()
	for _, name := range p.registry.AlarmNames() {
		d := alarms[name]
		if !p.sched.ShouldRun(ctx, name, module.RoleAlarm) {
			p.log.Debug("alarm not due, skipping", logging.Module(name))
			continue
		}

		res, err := supervise(ctx, func(ctx context.Context) (*hits.ResultSet, error) {
			unit, err := d.NewAlarm(p.deps)
			if err != nil {
				return nil, err
			}
			return unit.Run(ctx)
		})
		p.sched.MarkRun(ctx, name, module.RoleAlarm)
		if err != nil {
			p.failModule(ctx, d, stageAlarm, fmt.Sprintf("Error running alarm %s: %v", name, err))
			continue
		}
		if res == nil {
			res = hits.Empty()
		}

		d.Result = res.Clone()

		n := len(d.Result.Hits.Hits)
		p.record(ctx, runlog.Entry{
			Module:   name,
			Stage:    stageAlarm,
			Outcome:  runlog.OutcomeSuccess,
			Message:  fmt.Sprintf("Found %d documents to alarm", n),
			HitCount: n,
		})
		d.Status = module.StatusSuccess
		p.log.Info("alarm finished", logging.Module(name), logging.Hits(n))
	}
}
