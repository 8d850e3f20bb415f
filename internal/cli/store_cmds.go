package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// --- list command ---

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored stale repositories",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.GetAll()
	if listCategory != "" {
		records, err = st.GetByCategory(listCategory)
	}
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No stale repositories stored.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s [%s] stars=%d stale=%dmo since=%s\n",
			r.ID, r.Category, r.Stars, r.MonthsStale, r.StaleDetectedAt)
	}
	return nil
}

// --- stats command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate staleness statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Statistics()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	fmt.Printf("Total stale: %d\n", stats.TotalStale)
	fmt.Printf("Average months stale: %.1f\n", stats.AverageMonthsStale)

	if len(stats.ByCategory) > 0 {
		fmt.Println("By category:")
		cats := make([]string, 0, len(stats.ByCategory))
		for cat := range stats.ByCategory {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			fmt.Printf("  %-20s %d\n", cat, stats.ByCategory[cat])
		}
	}
	return nil
}

// --- backup command ---

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a timestamped copy of the database",
	RunE:  runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	path, err := st.Backup()
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	fmt.Printf("Backup written to %s\n", path)
	return nil
}

// --- check command ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit the database for structural problems",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := st.ValidateIntegrity()
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	if report.Valid {
		fmt.Println("Store is consistent.")
		return nil
	}

	fmt.Println("Store has problems:")
	for _, e := range report.Errors {
		fmt.Printf("  - %s\n", e)
	}
	return fmt.Errorf("integrity check found %d problems", len(report.Errors))
}
