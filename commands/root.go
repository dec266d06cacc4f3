// Package commands is the eventapi command line: serve, seed, export and
// version.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventapi/config"
)

const (
	Version = "0.1.0"
	appName = "eventapi"
)

func Execute() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Event registration backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	load := func() (*config.Config, error) {
		if configPath == "" {
			configPath = os.Getenv("CONFIG_PATH")
		}
		return config.Load(configPath)
	}

	cmd.AddCommand(
		serveCmd(load),
		seedCmd(load),
		exportCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

type loader func() (*config.Config, error)
