// internal/cli/inspect.go
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"narratives-mint/internal/application/mint/dto"
)

// NewInspectCommand はコミット済みの mint / metadata を表示します。
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <mint>",
		Short: "Show the mint state and metadata record of a mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, address string) error {
	mint, err := parseAddress(address)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, err := openContainer(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	view, err := c.Query.GetToken(ctx, mint)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", mint.ToBase58(), err)
	}
	return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Write(view, func(w io.Writer) error {
		return writeTokenText(w, view)
	})
}

func writeTokenText(w io.Writer, v dto.TokenView) error {
	fmt.Fprintf(w, "Mint:             %s\n", v.Mint.Address)
	fmt.Fprintf(w, "  decimals:       %d\n", v.Mint.Decimals)
	fmt.Fprintf(w, "  supply:         %d\n", v.Mint.Supply)
	fmt.Fprintf(w, "  mint authority: %s\n", strOrNone(v.Mint.MintAuthority))
	fmt.Fprintf(w, "  freeze authority: %s\n", strOrNone(v.Mint.FreezeAuthority))
	if v.Metadata == nil {
		fmt.Fprintln(w, "Metadata:         (none)")
		return nil
	}
	m := v.Metadata
	fmt.Fprintf(w, "Metadata:         %s\n", m.Address)
	fmt.Fprintf(w, "  name:           %s\n", m.Name)
	fmt.Fprintf(w, "  symbol:         %s\n", m.Symbol)
	fmt.Fprintf(w, "  uri:            %s\n", m.URI)
	fmt.Fprintf(w, "  update authority: %s\n", m.UpdateAuthority)
	fmt.Fprintf(w, "  mutable:        %t\n", m.IsMutable)
	return nil
}

func strOrNone(s *string) string {
	if s == nil {
		return "(none)"
	}
	return *s
}
