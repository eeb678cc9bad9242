package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [endpoint ids...]",
	Short: "Queue endpoints by id for the next drain",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEnqueue,
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	enqueueCmd.Flags().String("queue", "", "target queue (default: the primary queue)")
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	queueName, _ := cmd.Flags().GetString("queue")
	if queueName == "" {
		queueName = rt.container.Queues.Primary()
	}

	n, err := rt.container.Enqueuer.Enqueue(cmd.Context(), queueName, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d of %d endpoints on %s\n", n, len(args), queueName)
	return nil
}
