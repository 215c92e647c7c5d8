package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
	roomsvc "sealchat/internal/services/room"
)

func roomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage room keys",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Print a fresh room passphrase",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := roomsvc.NewPassphrase()
				if err != nil {
					return err
				}
				fmt.Println(p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "join <room> <passphrase>",
			Short: "Derive and store a room key",
			Long: "Derive and store a room key. The key is an unsalted hash of the\n" +
				"passphrase so every member converges on it; choose a long passphrase\n" +
				"(see `room new`).",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := newWire()
				if err != nil {
					return err
				}
				if err := w.Rooms.Join(context.Background(), domain.RoomID(args[0]), args[1]); err != nil {
					return err
				}
				fmt.Printf("joined %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "leave <room>",
			Short: "Forget a room key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := newWire()
				if err != nil {
					return err
				}
				return w.Rooms.Leave(context.Background(), domain.RoomID(args[0]))
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List joined rooms",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := newWire()
				if err != nil {
					return err
				}
				rooms, err := w.Rooms.Rooms()
				if err != nil {
					return err
				}
				for _, r := range rooms {
					fmt.Println(r)
				}
				return nil
			},
		},
	)
	return cmd
}
