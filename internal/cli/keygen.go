// internal/cli/keygen.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	solanainfra "narratives-mint/internal/infra/solana"
)

// KeygenOptions は keygen コマンドのフラグです。
type KeygenOptions struct {
	*RootOptions
	Out   string
	Force bool
}

type keygenResult struct {
	PublicKey string `json:"publicKey"`
	Path      string `json:"path"`
}

// NewKeygenCommand は solana-keygen 互換の keypair ファイルを作るコマンドです。
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair file compatible with solana-keygen",
		Example: `  mintctl keygen --out ./mint-authority.json
  gcloud secrets versions add mint-authority --data-file=./mint-authority.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (required)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	if !opts.Force {
		if _, err := os.Stat(opts.Out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.Out)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	acc, data, err := solanainfra.GenerateKeypair()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(opts.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(opts.Out, data, 0o600); err != nil {
		return fmt.Errorf("write keypair: %w", err)
	}

	res := keygenResult{PublicKey: acc.PublicKey.ToBase58(), Path: opts.Out}
	return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Write(res, func(w io.Writer) error {
		fmt.Fprintf(w, "Wrote keypair to %s\n", res.Path)
		fmt.Fprintf(w, "pubkey: %s\n", res.PublicKey)
		return nil
	})
}
