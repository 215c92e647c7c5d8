package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sealchat/internal/app"
	"sealchat/internal/platform/privacylog"
)

var (
	home       string
	passphrase string
	identity   string
	relayURL   string
	logLevel   string
	logFormat  string

	cfg    app.Config
	logger *slog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:          "sealchat",
		Short:        "End-to-end encrypted chat CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := app.DefaultHome()
				if err != nil {
					return err
				}
				home = dir
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			loaded, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			if passphrase != "" {
				loaded.Passphrase = passphrase
			}
			if identity != "" {
				loaded.Identity = identity
			}
			if relayURL != "" {
				loaded.RelayURL = relayURL
			}
			if logLevel != "" {
				loaded.LogLevel = logLevel
			}
			if logFormat != "" {
				loaded.LogFormat = logFormat
			}
			cfg = loaded

			logger, err = privacylog.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.sealchat)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase to protect keys")
	root.PersistentFlags().StringVar(&identity, "identity", "", "local identity name")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay URL (e.g. ws://127.0.0.1:8080/ws)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "text|json")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		roomCmd(),
		hashCmd(),
		verifyCmd(),
		sendCmd(),
		chatCmd(),
	)
	return root.Execute()
}

func newWire() (*app.Wire, error) {
	return app.NewWire(cfg, logger)
}

func requireIdentity() error {
	if cfg.Identity == "" {
		return fmt.Errorf("identity required (--identity or SEALCHAT_IDENTITY)")
	}
	return nil
}
