package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"sealchat/internal/app"
	"sealchat/internal/domain"
)

// send <peer> <message>: connect, wait until the peer's key is known,
// send one message and exit.
func sendCmd() *cobra.Command {
	var (
		asSecret bool
		toRoom   bool
		timeout  time.Duration
		wait     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send <peer|room> <message>",
		Short: "Encrypt and send a single message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asSecret && toRoom {
				return fmt.Errorf("--secret and --room are exclusive")
			}
			w, err := online()
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			target, text := args[0], []byte(args[1])
			ready := waitReady(w, target, toRoom)
			if err := w.Transport.Connect(ctx); err != nil {
				logger.Warn("first dial failed, retrying", "err", err)
			}
			select {
			case <-ready:
			case <-ctx.Done():
				if !w.Transport.Connected() {
					return fmt.Errorf("relay %s unreachable", w.Config.RelayURL)
				}
				return fmt.Errorf("timed out waiting for %s", target)
			}

			var (
				id  domain.SecretID
				env domain.SecretEnvelope
			)
			err = app.SendConfirmed(ctx, w.Transport, wait, func(ctx context.Context) error {
				var err error
				switch {
				case toRoom:
					err = w.Messages.SendRoom(ctx, domain.RoomID(target), text)
				case asSecret:
					id, env, err = w.Messages.SendSecret(ctx, domain.Username(target), text)
				default:
					err = w.Messages.SendDirect(ctx, domain.Username(target), text)
				}
				return err
			})
			if err != nil {
				return err
			}
			if asSecret {
				fmt.Printf("secret %s content hash %s\n", id, env.ContentHash)
			}
			fmt.Println("sent")
			return nil
		},
	}
	cmd.Flags().BoolVar(&asSecret, "secret", false, "send as a one-time secret")
	cmd.Flags().BoolVar(&toRoom, "room", false, "target is a room")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "give up after this long")
	cmd.Flags().DurationVar(&wait, "wait", app.DefaultRejectWindow, "how long to listen for a relay rejection")
	return cmd
}

func online() (*app.Wire, error) {
	if err := requireIdentity(); err != nil {
		return nil, err
	}
	w, err := newWire()
	if err != nil {
		return nil, err
	}
	if err := w.Online(nil); err != nil {
		return nil, err
	}
	return w, nil
}

// waitReady closes the returned channel once a room send can go out
// (after connect, when rejoins have been written) or once the peer's key
// has been announced.
func waitReady(w *app.Wire, target string, room bool) <-chan struct{} {
	ready := make(chan struct{})
	var once sync.Once
	signal := func() { once.Do(func() { close(ready) }) }
	if room {
		w.Transport.On(domain.EventConnected, func(context.Context, domain.Event) error {
			signal()
			return nil
		})
		return ready
	}
	w.Transport.On(domain.EventUserKey, func(_ context.Context, ev domain.Event) error {
		if uk, ok := ev.(domain.UserKey); ok && uk.Identity == domain.Username(target) {
			signal()
		}
		return nil
	})
	return ready
}
