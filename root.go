package main

import (
	"github.com/krau/lesionscan/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "lesionscan",
		Short: "Classify skin lesion photos",
		Long: `lesionscan classifies a skin lesion photo into one of eleven lesion
classes and reports the medical risk category of the predicted class.

Without a subcommand it starts the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Path to the TOML config file")

	cmd.AddCommand(newServeCmd(&cfgPath))
	cmd.AddCommand(newPredictCmd(&cfgPath))
	return cmd
}
