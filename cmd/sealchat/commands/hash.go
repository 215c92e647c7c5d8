package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/crypto"
	"sealchat/internal/protocol/secret"
)

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <text>",
		Short: "Print the integrity hash of text in hex and field form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := crypto.Hash(args[0])
			fmt.Printf("hex:   %s\nfield: %s\n", d.Hex(), d.Field())
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <text> <hash>",
		Short: "Check text against a published hash (field or hex form)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, expected := args[0], args[1]
			if secret.VerifyHash([]byte(text), expected) || crypto.VerifyHex(text, expected) {
				fmt.Println("match")
				return nil
			}
			fmt.Println("MISMATCH")
			return errors.New("hash mismatch")
		},
	}
}
