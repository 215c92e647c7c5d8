package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

func fingerprintCmd() *cobra.Command {
	var showKey bool
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireIdentity(); err != nil {
				return err
			}
			w, err := newWire()
			if err != nil {
				return err
			}
			kp, err := w.Identity.GetOrCreateKeys(domain.Username(cfg.Identity))
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(kp.Public))
			fmt.Printf("ID: %s\n", crypto.IdentityID(kp.Public))
			if showKey {
				fmt.Printf("Public key: %s\n", crypto.B64(kp.Public.Slice()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showKey, "public-key", false, "also print the base64 public key")
	return cmd
}
