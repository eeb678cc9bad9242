package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run once: enqueue if due (or forced) and drain every queue",
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("force", false, "ignore the interval and enqueue every enabled endpoint")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	rt, err := bootstrap(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	report, err := rt.container.Scheduler.RunNow(cmd.Context(), force)

	out := cmd.OutOrStdout()
	for _, line := range report.Summary.Messages {
		fmt.Fprintln(out, line)
	}
	if report.Executed {
		fmt.Fprintf(out, "enqueued %d endpoints, next execution at %s\n", report.Enqueued, report.NextExecution.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "processed %d, skipped %d, faults %d\n", report.Summary.Processed, report.Summary.Skipped, report.Summary.Faults)
	return err
}
