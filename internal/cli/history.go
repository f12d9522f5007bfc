package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phasewatch/phasewatch/pkg/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded alert notifications",
	Long:  `Query the alert history database and print recent notifications, newest first.`,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of records to show")
	historyCmd.Flags().IntP("channel", "c", 0, "Filter by channel id (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	channel, _ := cmd.Flags().GetInt("channel")

	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	records, err := store.ListAlerts(cmd.Context(), storage.AlertFilter{
		Channel: channel,
		Limit:   limit,
	})
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No alerts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCHANNEL\tKIND\tLEVEL\tVALUE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.1f\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Channel, r.Kind, r.NewLevel, r.Value,
		)
	}
	return w.Flush()
}
