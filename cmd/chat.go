package cmd

import (
	"github.com/spf13/cobra"

	"github.com/worraphat/jarvis/chat/tui"
)

func NewChatCmd() *cobra.Command {
	var plannerURL string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a terminal chat against a running planner",
		RunE: func(_ *cobra.Command, _ []string) error {
			starters := []string{
				"Predict stockouts for the next 7 days",
				"plant_201 is not working",
			}
			return tui.Run(plannerURL, starters)
		},
	}

	cmd.Flags().StringVar(&plannerURL, "planner", "http://localhost:8000", "base URL of the planner service")
	return cmd
}
