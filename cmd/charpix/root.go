package main

import (
	"github.com/spf13/cobra"

	"charpix/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "charpix",
		Short: "Charpix manages a character roster and per-character image galleries",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				cmd.PrintErrln(warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newCharacterCmd(cfg, &jsonOutput),
		newGalleryCmd(cfg, &jsonOutput),
		newImportCmd(cfg, &jsonOutput),
		newUserCmd(cfg, &jsonOutput),
		newConfigCmd(),
	)

	return cmd
}
