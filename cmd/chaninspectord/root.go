package main

import (
	"github.com/spf13/cobra"

	"github.com/rf-tools/chanspector/internal/config"
)

var configFile string

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chaninspectord",
		Short: "Channel inspector engine: carrier recovery, AGC, and symbol-timing over a shared worker pool",
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file path")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(serveCmd())
	root.AddCommand(configCmd())
	root.AddCommand(openCmd())
	root.AddCommand(closeCmd())
	root.AddCommand(infoCmd())
	root.AddCommand(paramsCmd())
	return root
}
