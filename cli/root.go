package cli

import (
	"fmt"

	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "defaultdesk",
		Short:        "Default customer review service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupContext(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return config.ManagerFromContext(cmd.Context()).Close(cmd.Context())
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("env-file", ".env", "Path to a dotenv file loaded before the environment")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Log as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")
	flags.String("environment", "", "Runtime environment (development, staging, production)")
	flags.String("db-conn-string", "", "PostgreSQL connection string")

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		BootstrapAdminCmd(),
		UsersCmd(),
		ConfigCmd(),
		VersionCmd(),
	)
	return root
}

// setupContext loads the dotenv file, then the configuration, and attaches
// both the config manager and the logger to the command context.
func setupContext(cmd *cobra.Command) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	level, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(level, logJSON, logSource)
	ctx := logger.ContextWithLogger(cmd.Context(), log)

	sources := []config.Source{config.NewDefaultProvider()}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		sources = append(sources, config.NewYAMLProvider(path))
	}
	cliFlags := map[string]any{}
	extractCLIFlags(cmd, cliFlags)
	sources = append(sources, config.NewEnvProvider(), config.NewCLIProvider(cliFlags))

	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, sources...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cmd.Flags().Changed("log-level") && cfg.Runtime.LogLevel != level {
		log = logger.SetupLogger(cfg.Runtime.LogLevel, logJSON, logSource)
		ctx = logger.ContextWithLogger(ctx, log)
	}
	manager.OnChange(func(next *config.Config) {
		logger.SetLevel(log, logger.ParseLevel(next.Runtime.LogLevel))
		log.Info("Configuration reloaded", "log_level", next.Runtime.LogLevel)
	})
	cmd.SetContext(config.ContextWithManager(ctx, manager))
	return nil
}
