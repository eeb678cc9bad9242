// Command endpoint-status checks HTTP endpoints from Redis backed queues,
// persists their status and mails subscribers when it changes.
//
// Usage:
//
//	endpoint-status serve -c config.yaml           # admin API + scheduler loop
//	endpoint-status run --force -c config.yaml     # one manual run
//	endpoint-status enqueue --queue q1 id1 id2     # queue endpoints by id
//	endpoint-status migrate up                     # apply SQL migrations
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "endpoint-status",
	Short:         "Endpoint health checks with status change mails",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (env vars override it)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
