package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/rodaine/table"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/internal/storage"
	"github.com/spf13/cobra"
)

var ErrHistoryDisabled = errors.New("run history is disabled: set --db-path or dbPath")

var historyURL string

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List saved runs, the test cases of one run, or the history of one URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyURL, "url", "", "show every stored probe of this URL")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}
	if cfg.DBPath() == "" {
		return ErrHistoryDisabled
	}

	ctx := cmd.Context()
	store := storage.NewRunStore(cfg.DBPath(), metadata.NewRecorder(newLogger(cmd), ""))
	if err := store.Open(ctx); err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	switch {
	case historyURL != "":
		history, err := store.URLHistory(ctx, historyURL)
		if err != nil {
			return err
		}
		tbl := table.New("Run", "URL", "Status", "Category", "Latency", "Probed At").WithWriter(out)
		for _, o := range history {
			tbl.AddRow(o.RunID, o.URL, o.StatusCode, o.Category, fmt.Sprintf("%dms", o.LatencyMs), o.ProbedAt.Format(time.DateTime))
		}
		tbl.Print()

	case len(args) == 1:
		cases, err := store.LoadTestCases(ctx, args[0])
		if err != nil {
			return err
		}
		tbl := table.New("ID", "Module", "Status", "Severity", "Subject").WithWriter(out)
		for _, tc := range cases {
			tbl.AddRow(tc.ID, tc.Module, tc.Status, tc.Severity, tc.SubjectData)
		}
		tbl.Print()

	default:
		runs, err := store.ListRuns(ctx, 0)
		if err != nil {
			return err
		}
		tbl := table.New("Run", "Saved At", "URLs", "Tests", "Passed", "Failed", "Score").WithWriter(out)
		for _, r := range runs {
			tbl.AddRow(r.ID, r.SavedAt.Format(time.DateTime), r.TotalURLs, r.TotalTestCases,
				r.Passed, r.Failed, fmt.Sprintf("%.1f%% (%s)", r.Score, r.Grade))
		}
		tbl.Print()
	}
	return nil
}
