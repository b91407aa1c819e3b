// cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/layerlift/internal/config"
	"github.com/xkilldash9x/layerlift/internal/observability"
)

// contextKey keeps config lookups in the command context collision-free.
type contextKey string

const configKey contextKey = "config"

// NewRootCommand builds the root command with all subcommands attached.
// Each call returns a pristine instance so command state never leaks
// between executions.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "layerlift",
		Short:   "Layerlift converts captured web pages into layered design documents.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v, cfgFile); err != nil {
				return err
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				// Fall back to a basic logger so the failure is visible.
				observability.InitializeLogger(config.LoggerConfig{
					Level: "info", Format: "console", ServiceName: "layerlift",
				})
				return fmt.Errorf("failed to load config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)

			// Store the validated config in the command's context for subcommands.
			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./layerlift.yaml)")

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newCaptureCmd())
	return rootCmd
}

// Execute runs the root command against the given context. The context
// should be signal-aware so a Ctrl+C lands as context.Canceled.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	defer observability.Sync()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
	}
	return err
}

// configFromContext retrieves the config stored by PersistentPreRunE.
// Commands invoked without the root wiring get the defaults.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.NewDefaultConfig()
}

// initializeConfig reads in the config file and LAYERLIFT_* environment variables.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("layerlift")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("LAYERLIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}
	return nil
}
