package main

import (
	"fmt"

	"endpoint-status/internals/security"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the admin API",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("subject", "", "token subject, usually an operator's email (required)")
	tokenCmd.Flags().String("role", security.RoleAdmin, "role claim")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	subject, _ := cmd.Flags().GetString("subject")
	role, _ := cmd.Flags().GetString("role")

	token, err := security.NewTokenService(&cfg.Auth).GenerateAccessToken(subject, role)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
