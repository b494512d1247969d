package main

import (
	"fmt"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/utils"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// newIssueTokenCommand signs bearer tokens for operators and local testing.
func newIssueTokenCommand() *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign a bearer token for a user id and role",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}

			callerRole := models.Role(strings.ToUpper(role))
			if !callerRole.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if userID <= 0 {
				return fmt.Errorf("--user-id must be positive")
			}

			token, err := utils.GenerateAccessToken(userID, string(callerRole), rt.internalConfig.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "user id carried in the sub claim")
	cmd.Flags().StringVar(&role, "role", string(models.RolePatient), "caller role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
