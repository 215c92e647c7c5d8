package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sealchat/internal/platform/privacylog"
	"sealchat/internal/relay"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr      string
		rps       float64
		burst     int
		logLevel  string
		logFormat string
	)
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "In-memory WebSocket relay for sealchat",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := privacylog.NewLogger(os.Stderr, logLevel, logFormat)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := relay.NewServer(relay.Config{Addr: addr, Rate: rps, Burst: burst, Log: log})
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Error("relay failed", "err", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Float64Var(&rps, "rate", 20, "events per second per identity (0 disables limiting)")
	cmd.Flags().IntVar(&burst, "burst", 40, "burst size per identity")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "text|json")
	return cmd
}
