package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/compozy/defaultdesk/engine/auth/model"
	authuc "github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/infra/postgres"
	"github.com/compozy/defaultdesk/engine/infra/repo"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/spf13/cobra"
)

var errInactiveActor = errors.New("the acting account is inactive")

// UsersCmd manages accounts from the shell. Commands act as an existing admin
// (--as) so the same policy applies as over HTTP.
func UsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.PersistentFlags().String("as", "", "Email of the admin to act as (defaults to auth.bootstrap_email)")

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE:  runUsersCreate,
	}
	create.Flags().String("email", "", "Email of the new user")
	create.Flags().String("password", "", "Initial password (min 8 characters)")
	create.Flags().String("name", "", "Display name")
	create.Flags().String("role", string(model.RoleOperator), "Role (admin, reviewer, operator)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE:  runUsersList,
	}
	cmd.AddCommand(create, list)
	return cmd
}

func runUsersCreate(cmd *cobra.Command, _ []string) error {
	input := &authuc.CreateUserInput{}
	var role string
	for name, dst := range map[string]*string{
		"email":    &input.Email,
		"password": &input.Password,
		"name":     &input.DisplayName,
		"role":     &role,
	} {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	parsed, err := model.ParseRole(role)
	if err != nil {
		return err
	}
	input.Role = parsed
	return withAuthRepo(cmd, func(ctx context.Context, r authuc.Repository, settings authuc.Settings) error {
		actor, err := actingAdmin(ctx, cmd, r)
		if err != nil {
			return err
		}
		user, err := authuc.NewCreateUser(r, settings, actor, input).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.Role, user.Email, user.ID)
		return nil
	})
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	return withAuthRepo(cmd, func(ctx context.Context, r authuc.Repository, _ authuc.Settings) error {
		actor, err := actingAdmin(ctx, cmd, r)
		if err != nil {
			return err
		}
		users, err := authuc.NewListUsers(r, actor).Execute(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tROLE\tACTIVE")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Role, u.Active)
		}
		return w.Flush()
	})
}

func actingAdmin(ctx context.Context, cmd *cobra.Command, r authuc.Repository) (*model.Principal, error) {
	email, err := cmd.Flags().GetString("as")
	if err != nil {
		return nil, err
	}
	if email == "" {
		email = config.FromContext(ctx).Auth.BootstrapEmail
	}
	user, err := r.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("resolving acting user %q: %w", email, err)
	}
	if !user.Active {
		return nil, errInactiveActor
	}
	return &model.Principal{User: user}, nil
}

// withAuthRepo opens postgres for the duration of fn.
func withAuthRepo(
	cmd *cobra.Command,
	fn func(ctx context.Context, r authuc.Repository, settings authuc.Settings) error,
) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	store, err := postgres.NewStore(ctx, postgres.FromAppConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.FromContext(ctx).Warn("Failed to close postgres store", "error", err)
		}
	}()
	settings := authuc.Settings{SessionTTL: cfg.Auth.SessionTTL, BcryptCost: cfg.Auth.BcryptCost}
	return fn(ctx, repo.NewProvider(store.Pool()).NewAuthRepo(), settings)
}
