package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hcm/internal/platform/config"
	"hcm/internal/platform/crypto"
)

func newCipherCmd(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cipher",
		Short: "Encrypt or decrypt a stored bank account value",
	}
	cmd.AddCommand(newCipherActionCmd(conf, "encrypt", func(c *crypto.FieldCipher, v string) (string, error) { return c.Encrypt(v) }))
	cmd.AddCommand(newCipherActionCmd(conf, "decrypt", func(c *crypto.FieldCipher, v string) (string, error) { return c.Decrypt(v) }))
	return cmd
}

func newCipherActionCmd(conf *config.Config, use string, apply func(*crypto.FieldCipher, string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: use + " a value with the configured field cipher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher, err := crypto.NewFieldCipherFromConfig(conf.FieldCipherKey, conf.FieldCipherIV)
			if err != nil {
				return err
			}
			out, err := apply(cipher, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}
