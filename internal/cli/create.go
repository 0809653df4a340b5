// internal/cli/create.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"

	mintdom "narratives-mint/internal/domain/mint"
	"narratives-mint/internal/infra/runtime"
	solanainfra "narratives-mint/internal/infra/solana"
)

// CreateOptions は create コマンドのフラグです。
type CreateOptions struct {
	*RootOptions

	RequestFile string
	Title       string
	Symbol      string
	URI         string
	Decimals    uint8

	PayerFile     string
	AuthorityFile string
	MintFile      string
}

type createResult struct {
	TransactionID string   `json:"transactionId"`
	Mint          string   `json:"mint"`
	MintAuthority string   `json:"mintAuthority"`
	Metadata      string   `json:"metadata"`
	Payer         string   `json:"payer"`
	Committed     bool     `json:"committed"`
	Stage         string   `json:"stage,omitempty"`
	Error         string   `json:"error,omitempty"`
	Logs          []string `json:"logs"`
}

// NewCreateCommand は mint 作成トランザクションを組み立てて実行します。
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a mint, initialize it and attach metadata",
		Long: `Create a mint, initialize it and attach metadata in one transaction.

The request comes from --request (YAML) or from --title/--symbol/--uri/--decimals.
The mint authority also becomes the freeze authority and the metadata update authority.
When --authority is omitted, secret.authority (Secret Manager) is tried, then the payer.
When --mint is omitted a fresh mint keypair is generated.`,
		Example: `  mintctl --ledger ./ledger create --payer payer.json \
    --title "Narratives Demo" --symbol NRTV --uri https://example.com/demo.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RequestFile, "request", "", "request file (yaml)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "token name")
	cmd.Flags().StringVar(&opts.Symbol, "symbol", "", "token symbol")
	cmd.Flags().StringVar(&opts.URI, "uri", "", "metadata json uri")
	cmd.Flags().Uint8Var(&opts.Decimals, "decimals", 0, "mint decimals")
	cmd.Flags().StringVar(&opts.PayerFile, "payer", "", "payer keypair file (required)")
	cmd.Flags().StringVar(&opts.AuthorityFile, "authority", "", "mint authority keypair file")
	cmd.Flags().StringVar(&opts.MintFile, "mint", "", "mint keypair file")
	_ = cmd.MarkFlagRequired("payer")

	return cmd
}

func (o *CreateOptions) request() (mintdom.CreationRequest, error) {
	if strings.TrimSpace(o.RequestFile) != "" {
		return loadRequestFile(o.RequestFile)
	}
	return mintdom.CreationRequest{
		Title:    o.Title,
		Symbol:   o.Symbol,
		URI:      o.URI,
		Decimals: o.Decimals,
	}, nil
}

func runCreate(opts *CreateOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	req, err := opts.request()
	if err != nil {
		return err
	}

	c, err := openContainer(ctx, cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer c.Close()

	payer, err := loadSigner(ctx, "payer", opts.PayerFile, "", nil)
	if err != nil {
		return err
	}
	authority, err := loadSigner(ctx, "authority", opts.AuthorityFile, c.Config.Secret.Authority, &payer)
	if err != nil {
		return err
	}
	var mint types.Account
	if strings.TrimSpace(opts.MintFile) != "" {
		if mint, err = solanainfra.LoadKeypairFile(opts.MintFile); err != nil {
			return fmt.Errorf("mint keypair: %w", err)
		}
	} else {
		mint = types.NewAccount()
	}

	ix, err := solanainfra.NewCreateTokenInstruction(c.ProgramID, solanainfra.CreateTokenAccounts{
		Mint:          mint.PublicKey,
		MintAuthority: authority.PublicKey,
		Payer:         payer.PublicKey,
	}, req)
	if err != nil {
		return err
	}

	rc, execErr := c.Runtime.Execute(ctx, runtime.Transaction{
		Instructions: []types.Instruction{ix},
		Signers:      uniqueSigners(mint.PublicKey, authority.PublicKey, payer.PublicKey),
	})

	res := createResult{
		Mint:          mint.PublicKey.ToBase58(),
		MintAuthority: authority.PublicKey.ToBase58(),
		Metadata:      ix.Accounts[2].PubKey.ToBase58(),
		Payer:         payer.PublicKey.ToBase58(),
	}
	if rc != nil {
		res.TransactionID = rc.ID.String()
		res.Committed = rc.Committed
		res.Logs = rc.Logs
	}
	if execErr != nil {
		res.Error = execErr.Error()
		var pe *mintdom.ProvisionError
		if errors.As(execErr, &pe) {
			res.Stage = string(pe.Stage)
		}
	}

	if err := NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Write(res, func(w io.Writer) error {
		for _, l := range res.Logs {
			fmt.Fprintln(w, l)
		}
		if res.Committed {
			fmt.Fprintf(w, "mint: %s\nmetadata: %s\ntx: %s\n", res.Mint, res.Metadata, res.TransactionID)
		}
		return nil
	}); err != nil {
		return err
	}
	return execErr
}

func uniqueSigners(keys ...common.PublicKey) []common.PublicKey {
	seen := make(map[common.PublicKey]struct{}, len(keys))
	out := make([]common.PublicKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
