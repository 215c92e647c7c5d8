package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireIdentity(); err != nil {
				return err
			}
			w, err := newWire()
			if err != nil {
				return err
			}
			name := domain.Username(cfg.Identity)
			fp, err := w.Identity.Fingerprint(name)
			if err != nil {
				return err
			}
			id, err := w.Identity.ID(name)
			if err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("Identity %s ready.\nFingerprint: %s\nID: %s\n", name, fp, id)
			return nil
		},
	}
}
