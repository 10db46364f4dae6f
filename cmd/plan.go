package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/worraphat/jarvis/planner"
)

func NewPlanCmd() *cobra.Command {
	var (
		dataDir string
		sku     string
		qty     int
		origin  string
		horizon int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print a recovery plan for a delayed SKU as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := loadDataset(cmd.Context(), dataDir)
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			rows, kpi := planner.PlanForDelay(planner.DelayEvent{
				SKU:            sku,
				QtyUnavailable: qty,
				Origin:         origin,
			}, ds, planner.Options{HorizonDays: horizon})

			out := struct {
				Rows []planner.Row `json:"rows"`
				KPI  planner.KPI   `json:"kpi"`
			}{Rows: rows, KPI: kpi}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "data", "directory holding the CSV dataset")
	cmd.Flags().StringVar(&sku, "sku", "", "delayed SKU, e.g. product_1001")
	cmd.Flags().IntVar(&qty, "qty", 0, "quantity that became unavailable")
	cmd.Flags().StringVar(&origin, "origin", "", "plant whose stock is unavailable")
	cmd.Flags().IntVar(&horizon, "horizon", 7, "planning horizon in days")
	_ = cmd.MarkFlagRequired("sku")
	return cmd
}
