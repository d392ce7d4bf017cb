package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pugetops/ferrytrack/infra/logger"
)

var resetModelsCmd = &cobra.Command{
	Use:   "reset-models",
	Short: "Delete every persisted prediction model",
	RunE:  resetModels,
}

func init() {
	rootCmd.AddCommand(resetModelsCmd)
}

func resetModels(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("reset-models").Errorf("service close: %v", err)
		}
	}()

	if err := svc.ResetModels(ctx); err != nil {
		return err
	}
	fmt.Println("all models deleted")
	return nil
}
