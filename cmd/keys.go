package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/chacha20poly1305"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate a SECRETS_KEY value (base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := make([]byte, chacha20poly1305.KeySize)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "export SECRETS_KEY=%s\n", base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}
}
