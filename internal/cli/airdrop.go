// internal/cli/airdrop.go
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

type airdropResult struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
	Balance  uint64 `json:"balance"`
}

// NewAirdropCommand はローカル ledger 上のアカウントに lamports を付与します。
func NewAirdropCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "airdrop <address> <lamports>",
		Short:   "Fund an account on the local ledger",
		Example: `  mintctl --ledger ./ledger airdrop 9xQe...Pz 1000000000`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAirdrop(rootOpts, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runAirdrop(opts *RootOptions, cmd *cobra.Command, address, amount string) error {
	addr, err := parseAddress(address)
	if err != nil {
		return err
	}
	lamports, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid lamports %q: %w", amount, err)
	}

	ctx := cmd.Context()
	c, err := openContainer(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Runtime.Airdrop(ctx, addr, lamports); err != nil {
		return err
	}
	acc, err := c.Runtime.Account(ctx, addr)
	if err != nil {
		return err
	}

	res := airdropResult{Address: addr.ToBase58(), Lamports: lamports, Balance: acc.Lamports}
	return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Write(res, func(w io.Writer) error {
		fmt.Fprintf(w, "Airdropped %d lamports to %s (balance %d)\n", res.Lamports, res.Address, res.Balance)
		return nil
	})
}
