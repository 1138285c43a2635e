package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openmined/dirbox/internal/server"
	"github.com/openmined/dirbox/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "dirbox"
)

var rootCmd = &cobra.Command{
	Use:     "dirbox",
	Short:   "Serve a directory tree over HTTP with per-entry public flags",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config := &server.Config{
			HTTP: server.HTTPConfig{
				Addr:     viper.GetString("bind"),
				CertFile: viper.GetString("cert_file"),
				KeyFile:  viper.GetString("key_file"),
			},
			Root: viper.GetString("root"),
			Auth: server.AuthConfig{
				Username:       viper.GetString("auth.username"),
				Password:       viper.GetString("auth.password"),
				PasswordHash:   viper.GetString("auth.password_hash"),
				SessionTTL:     viper.GetDuration("auth.session_ttl"),
				LoginRateLimit: viper.GetString("auth.login_rate_limit"),
			},
		}

		s, err := server.New(config)
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true
		defer slog.Info("Bye!")
		return s.Start(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bind", "b", server.DefaultAddr, "Address to bind the server")
	rootCmd.Flags().StringP("root", "r", ".", "Directory tree to serve")
	rootCmd.Flags().String("cert", "", "Path to the TLS certificate file")
	rootCmd.Flags().String("key", "", "Path to the TLS key file")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file")
}

func main() {
	// local overrides for development
	_ = godotenv.Load()

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.RFC3339,
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(home, ".dirbox"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("bind", cmd.Flags().Lookup("bind"))
	viper.BindPFlag("root", cmd.Flags().Lookup("root"))
	viper.BindPFlag("cert_file", cmd.Flags().Lookup("cert"))
	viper.BindPFlag("key_file", cmd.Flags().Lookup("key"))

	viper.SetEnvPrefix("DIRBOX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}
