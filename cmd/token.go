// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-notes/internal/config"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/credentials"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a credential for local testing",
	Long:  `Sign a credential with JWT_SECRET for the given identity, without a password round trip.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specs := new(config.EnvSpec)
		if err := envconfig.Process("", specs); err != nil {
			return fmt.Errorf("issues with environment sourcing: %w", err)
		}

		userID, _ := cmd.Flags().GetString("user-id")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		tenantID, _ := cmd.Flags().GetString("tenant-id")
		slug, _ := cmd.Flags().GetString("tenant-slug")

		if !tenancy.IsValidSlug(slug) {
			return fmt.Errorf("invalid tenant slug %q", slug)
		}

		creds, err := credentials.NewService(
			specs.JWTSecret,
			tracing.NewNoopTracer(),
			monitoring.NewNoopMonitor("tenant-notes"),
			logging.NewNoopLogger(),
			credentials.WithIssuer(specs.JWTIssuer),
			credentials.WithLifetime(specs.TokenLifetime),
		)
		if err != nil {
			return err
		}

		token, err := creds.Issue(cmd.Context(), credentials.Identity{
			UserID:     userID,
			Email:      email,
			Role:       types.Role(role),
			TenantID:   tenantID,
			TenantSlug: slug,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("user-id", "", "User ID (sub claim)")
	tokenCmd.Flags().String("email", "", "User email")
	tokenCmd.Flags().String("role", string(types.RoleMember), "Role, ADMIN or MEMBER")
	tokenCmd.Flags().String("tenant-id", "", "Tenant ID")
	tokenCmd.Flags().String("tenant-slug", "", "Tenant slug")

	for _, f := range []string{"user-id", "email", "tenant-id", "tenant-slug"} {
		_ = tokenCmd.MarkFlagRequired(f)
	}
}
