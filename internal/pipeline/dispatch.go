package pipeline

import (
	"context"
	"fmt"

	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
)

// dispatchAlarms processes each enabled, successfully-run alarm: merges
// per-hit mutations and tags the hits on the descriptor's result, then
// builds an independent grouped payload and fans it out to every enabled
// connector. Alarms with zero hits send nothing.
func (p *Pipeline) dispatchAlarms(ctx context.Context) {
	p.log.Info("processing alarms")

	alarms := p.registry.Alarms()
	connectors := p.registry.Connectors()

	for _, name := range p.registry.AlarmNames() {
		if !p.enablement.Alarms[name] {
			p.log.Debug("alarm not enabled, skipping", logging.Module(name))
			continue
		}

		d := alarms[name]
		// An alarm that failed to run is never processed: its result set
		// cannot be trusted.
		if d.Status != module.StatusSuccess {
			p.log.Warn("alarm did not run correctly, skipping processing",
				logging.Module(name), "status", string(d.Status))
			continue
		}

		r := d.Result
		alarmName := d.Info.Submodule
		for _, h := range r.Hits.Hits {
			// A hit id absent from the mutations map gets an empty mutation.
			hits.AddAlarmData(h, r.Mutations[h.ID], alarmName)
		}
		hits.SetTags(alarmName, r.Hits.Hits)
		p.persistTags(ctx, name, r.Hits.Hits)
		p.log.Debug("tagged alarm hits", logging.Submodule(alarmName), logging.Hits(r.Hits.Total))

		if r.Hits.Total <= 0 {
			continue
		}

		// The payload gets its own copy of the hits: grouping and connector
		// side effects must not leak back into the descriptor's result,
		// which other alarms sharing module state may still depend on.
		clone := r.Clone()
		payload := &hits.AlarmPayload{
			Alarm:     name,
			Submodule: alarmName,
			Total:     clone.Hits.Total,
			GroupBy:   clone.GroupBy,
			Groups:    hits.GroupHits(clone.Hits.Hits, clone.GroupBy),
		}

		for _, cname := range p.registry.ConnectorNames() {
			if !p.enablement.Notifications[cname] {
				continue
			}
			p.log.Info("connector enabled, sending alarm",
				logging.Connector(cname), logging.Module(name), logging.Hits(payload.Total))
			if err := p.sendAlarm(ctx, connectors[cname], payload); err != nil {
				// Connector failures are contained: one broken notification
				// path must not block the remaining connectors.
				p.log.Error("connector failed to send alarm",
					logging.Connector(cname), logging.Module(name), logging.Error(err))
			}
		}
	}
}

func (p *Pipeline) sendAlarm(ctx context.Context, d *module.Descriptor, payload *hits.AlarmPayload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connector panicked: %v", r)
		}
	}()

	unit, err := d.NewConnector(p.deps)
	if err != nil {
		return err
	}
	return unit.SendAlarm(ctx, payload)
}
