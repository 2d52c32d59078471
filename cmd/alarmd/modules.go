package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redelk-project/alarmd/internal/config"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List registered modules and their enablement",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		registry := module.NewRegistry(logging.Default())
		registry.Load(module.Registered())

		printRole(cmd, "Enrichment modules", registry.EnrichNames(), registry.Enrichers(), nil)
		printRole(cmd, "Alarm modules", registry.AlarmNames(), registry.Alarms(), func(name string) bool {
			return cfg.AlarmEnabled(name)
		})
		printRole(cmd, "Notification connectors", registry.ConnectorNames(), registry.Connectors(), func(name string) bool {
			return cfg.NotificationEnabled(name)
		})
		return nil
	},
}

func printRole(cmd *cobra.Command, title string, names []string, descriptors map[string]*module.Descriptor, enabled func(string) bool) {
	cmd.Printf("%s:\n", title)
	if len(names) == 0 {
		cmd.Println("  (none)")
		return
	}
	for _, name := range names {
		d := descriptors[name]
		state := ""
		if enabled != nil {
			state = "  [disabled]"
			if enabled(name) {
				state = "  [enabled]"
			}
		}
		cmd.Printf("  %-12s %s%s\n", name, d.Info.Description, state)
	}
}
