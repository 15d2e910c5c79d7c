package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	authuc "github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/spf13/cobra"
)

const bootstrapPasswordEnv = "DEFAULTDESK_ADMIN_PASSWORD"

func BootstrapAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the first admin account when none exists",
		RunE:  runBootstrapAdmin,
	}
	cmd.Flags().String("email", "", "Admin email (defaults to auth.bootstrap_email)")
	cmd.Flags().String("password", "", "Admin password (or set "+bootstrapPasswordEnv+")")
	return cmd
}

func runBootstrapAdmin(cmd *cobra.Command, _ []string) error {
	email, password, err := bootstrapCredentials(cmd, config.FromContext(cmd.Context()))
	if err != nil {
		return err
	}
	return withAuthRepo(cmd, func(ctx context.Context, r authuc.Repository, settings authuc.Settings) error {
		user, err := authuc.NewBootstrapAdmin(r, settings, email, password).Execute(ctx)
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "An admin already exists; nothing to do")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
		return nil
	})
}

// bootstrapCredentials prefers flags, then the environment, then config.
func bootstrapCredentials(cmd *cobra.Command, cfg *config.Config) (string, string, error) {
	email, err := cmd.Flags().GetString("email")
	if err != nil {
		return "", "", err
	}
	password, err := cmd.Flags().GetString("password")
	if err != nil {
		return "", "", err
	}
	if email == "" {
		email = cfg.Auth.BootstrapEmail
	}
	if password == "" {
		password = os.Getenv(bootstrapPasswordEnv)
	}
	if password == "" {
		password = cfg.Auth.BootstrapPassword.Value()
	}
	if email == "" || password == "" {
		return "", "", errors.New("an admin email and password are required")
	}
	return email, password, nil
}
