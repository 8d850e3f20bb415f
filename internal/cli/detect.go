package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stalewatch/stalewatch/internal/engine"
	"github.com/stalewatch/stalewatch/internal/record"
)

var detectThreshold int

var detectCmd = &cobra.Command{
	Use:   "detect [records.json]",
	Short: "Run staleness detection over a crawler batch",
	Long:  "Reads a JSON batch of repository records (from a file, or stdin when no file is given), classifies each against the threshold, and reconciles the stale store.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().IntVarP(&detectThreshold, "threshold", "t", 0, "Staleness threshold in calendar months (overrides config)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	threshold := cfg.ThresholdMonths
	if cmd.Flags().Changed("threshold") {
		threshold = detectThreshold
	}

	var records []record.SourceRecord
	if len(args) > 0 {
		records, err = record.LoadBatchFile(args[0])
	} else {
		records, err = record.LoadBatch(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := engine.New(st, threshold).Detect(records)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	stats := result.Stats
	fmt.Printf("Processed %d records (threshold: %d months)\n", stats.TotalProcessed, threshold)
	fmt.Printf("  active:          %d\n", stats.ActiveCount)
	fmt.Printf("  stale:           %d (%d newly detected)\n", len(result.StaleItems), stats.NewlyStale)
	fmt.Printf("  reactivated:     %d\n", stats.Reactivated)
	fmt.Printf("  remaining stale: %d (stored, not in this batch)\n", stats.RemainingStale)

	if len(result.ReactivatedItems) > 0 {
		fmt.Println("\nReactivated:")
		for _, r := range result.ReactivatedItems {
			fmt.Printf("  - %s\n", r.ID)
		}
	}

	for _, re := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", re)
	}
	return nil
}
