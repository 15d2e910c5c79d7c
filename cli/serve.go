package cli

import (
	"fmt"

	"github.com/compozy/defaultdesk/engine/infra/server"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Run the HTTP API",
		RunE:    runServe,
	}
	cmd.Flags().String("host", "", "Host interface to bind")
	cmd.Flags().Int("port", 0, "Port to listen on")
	cmd.Flags().String("redis-url", "", "Redis URL for session cache and rate limits")
	cmd.Flags().String("storage", "", "Attachment storage driver (local, s3)")
	cmd.Flags().String("audit-driver", "", "Audit log driver (postgres, sqlite)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger.FromContext(ctx).Info(
		"Starting defaultdesk",
		"environment", cfg.Runtime.Environment,
		"storage", cfg.Storage.Driver,
		"audit", cfg.Audit.Driver,
	)
	srv, err := server.NewServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run()
}
