// internal/cli/root.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"narratives-mint/internal/infra/config"
	"narratives-mint/internal/platform/di"
	"narratives-mint/internal/platform/logging"
)

// RootOptions は全コマンド共通のフラグです。
type RootOptions struct {
	ConfigFile string
	LedgerPath string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats は --format に指定できる値です。
var ValidFormats = []string{"text", "json"}

// NewRootCommand は mintctl のルートコマンドを作ります。
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mintctl",
		Short: "Create token mints with metadata on a local ledger",
		Long: `mintctl creates a token mint, initializes it and attaches a metadata record
in a single all-or-nothing transaction against a local ledger.

Set --ledger (or NARRATIVES_MINT_LEDGER_PATH) to keep state between commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml|toml|json)")
	cmd.PersistentFlags().StringVar(&opts.LedgerPath, "ledger", "", "ledger directory (overrides ledger.path)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openContainer は設定を読み込み、フラグで上書きしてから DI コンテナを組み立てます。
func openContainer(ctx context.Context, cmd *cobra.Command, opts *RootOptions) (*di.Container, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.LedgerPath != "" {
		cfg.Ledger.Path = opts.LedgerPath
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return di.NewContainer(ctx, cfg, logger)
}
