package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pugetops/ferrytrack/core/training"
	"github.com/pugetops/ferrytrack/infra/logger"
)

var (
	trainSource  string
	trainVessels []string
	trainFrom    string
	trainTo      string
	trainJSON    bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the model training pipeline",
	Long: `Trains per-route duration models from completed trips.

By default the pipeline reads from the trip store. With --source feed it
pulls voyage history for the named vessels straight from the WSDOT API.`,
	RunE: train,
}

func init() {
	trainCmd.Flags().StringVar(&trainSource, "source", "store", "training data source: store or feed")
	trainCmd.Flags().StringSliceVar(&trainVessels, "vessel", nil, "vessel names for --source feed (repeatable)")
	trainCmd.Flags().StringVar(&trainFrom, "from", "", "history start date for --source feed (YYYY-MM-DD)")
	trainCmd.Flags().StringVar(&trainTo, "to", "", "history end date for --source feed (YYYY-MM-DD)")
	trainCmd.Flags().BoolVar(&trainJSON, "json", false, "print the full run result as JSON")
	rootCmd.AddCommand(trainCmd)
}

func train(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("train").Errorf("service close: %v", err)
		}
	}()

	var res *training.Result
	switch trainSource {
	case "store":
		res, err = svc.Train(ctx)
	case "feed":
		if len(trainVessels) == 0 {
			return fmt.Errorf("--source feed requires at least one --vessel")
		}
		from, to, perr := parseTrainRange(trainFrom, trainTo)
		if perr != nil {
			return perr
		}
		res, err = svc.TrainFromFeed(ctx, trainVessels, from, to)
	default:
		return fmt.Errorf("unknown source %q (want store or feed)", trainSource)
	}
	if err != nil {
		return err
	}

	if trainJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Printf("run %s: %d models trained, %d errors, %d/%d records retained\n",
		res.RunID, res.Trained(), len(res.Errors), res.Quality.Retained, res.Quality.Total)
	return nil
}

func parseTrainRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, -3, 0)
	var err error
	if fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --from: %w", err)
		}
	}
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --to: %w", err)
		}
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be before --to")
	}
	return from, to, nil
}
