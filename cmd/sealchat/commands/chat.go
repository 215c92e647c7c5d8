package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sealchat/internal/app"
	"sealchat/internal/domain"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session (type /help)",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := online()
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			chat := &app.Chat{Messages: w.Messages, Rooms: w.Rooms, Out: os.Stdout}
			w.Transport.On(domain.EventConnected, func(context.Context, domain.Event) error {
				fmt.Fprintln(os.Stdout, "* connected")
				return nil
			})
			w.Transport.On(domain.EventDisconnected, func(_ context.Context, ev domain.Event) error {
				d := ev.(domain.Disconnected)
				if !d.Final {
					fmt.Fprintf(os.Stdout, "* disconnected, retrying in %s\n", d.RetryIn)
				}
				return nil
			})

			// Run owns the connection until ctx ends; /quit ends it too.
			ctx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- w.Transport.Run(ctx) }()

			err = chat.Run(ctx, os.Stdin)
			cancel()
			if runErr := <-done; err == nil {
				err = runErr
			}
			return err
		},
	}
}
