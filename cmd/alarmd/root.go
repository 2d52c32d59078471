package main

import "github.com/spf13/cobra"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "alarmd",
	Short: "Red team infrastructure alarm daemon",
	Long: "alarmd runs registered enrichment and alarm modules against the " +
		"search backend and dispatches triggered alarms to enabled " +
		"notification connectors. It performs one pass per invocation and " +
		"is intended to be run from a scheduler.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modulesCmd)
}
