// Package cmd wires the jarvis binaries: the planner service, the terminal
// chat client, and the one-shot plan advisor.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/worraphat/jarvis/pkg/config"
)

func NewRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "jarvis",
		Short: "Supply-chain disruption responder",
		Long: `jarvis answers questions about delayed or missing products: which
orders and customers are hit, where replacement stock can ship from, and
what a stockout or blocked lane would do to on-time delivery.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			config.SetEnvFile(envFile)
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file")

	root.AddCommand(NewServeCmd())
	root.AddCommand(NewChatCmd())
	root.AddCommand(NewPlanCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
