package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pugetops/ferrytrack/infra/logger"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a single poll cycle and exit",
	RunE:  tick,
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

func tick(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("tick").Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Tick(ctx)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d vessels failed", res.Failed, res.Processed+res.Failed)
	}
	return nil
}
