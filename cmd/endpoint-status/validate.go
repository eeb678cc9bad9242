package main

import (
	"fmt"
	"strings"

	"endpoint-status/config"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print a summary",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Config is valid!")
	fmt.Fprintf(out, "  env:            %s\n", cfg.Env)
	fmt.Fprintf(out, "  interval:       %s\n", cfg.Scheduler.Interval())
	fmt.Fprintf(out, "  queues:         %s (primary %s)\n", strings.Join(cfg.Queues.Names, ", "), cfg.Queues.PrimaryQueue())
	fmt.Fprintf(out, "  mail transport: %s\n", cfg.Mail.Transport)
	return nil
}
