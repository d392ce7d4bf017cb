package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pugetops/ferrytrack/infra/logger"
)

var (
	backfillVessels []string
	backfillFrom    string
	backfillTo      string
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Seed the completed-trip archive from feed history",
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().StringSliceVar(&backfillVessels, "vessel", nil, "vessel names (repeatable, required)")
	backfillCmd.Flags().StringVar(&backfillFrom, "from", "", "history start date (YYYY-MM-DD)")
	backfillCmd.Flags().StringVar(&backfillTo, "to", "", "history end date (YYYY-MM-DD)")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	if len(backfillVessels) == 0 {
		return fmt.Errorf("at least one --vessel is required")
	}
	from, to, err := parseTrainRange(backfillFrom, backfillTo)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("backfill").Errorf("service close: %v", err)
		}
	}()

	n, err := svc.Backfill(ctx, backfillVessels, from, to)
	if err != nil {
		return err
	}
	fmt.Printf("backfilled %d trips\n", n)
	return nil
}
