// internal/application/mint/provisioner.go
package mint

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"

	mintdom "narratives-mint/internal/domain/mint"
)

// ============================================================
// Provisioner 本体
// ============================================================

// Provisioner は「mint 作成 → mint 初期化 → metadata 作成」を 1 命令として実行します。
//
// ロールバック処理は持ちません。どこかのステップが失敗した場合は
// エラーをそのまま返し、ホスト側がトランザクション全体を破棄します。
type Provisioner struct {
	allocator   mintdom.AccountAllocator
	initializer mintdom.MintInitializer
	attacher    mintdom.MetadataAttacher
	rent        mintdom.RentSysvar

	// 任意依存（Setter で後から差し込む）
	programLog mintdom.ProgramLogger
	metrics    *Metrics
	logger     zerolog.Logger
}

// NewProvisioner は Provisioner のコンストラクタです。
// programLog / metrics / logger は任意依存なので Setter で差し込みます。
func NewProvisioner(
	allocator mintdom.AccountAllocator,
	initializer mintdom.MintInitializer,
	attacher mintdom.MetadataAttacher,
	rent mintdom.RentSysvar,
) *Provisioner {
	return &Provisioner{
		allocator:   allocator,
		initializer: initializer,
		attacher:    attacher,
		rent:        rent,
		logger:      zerolog.Nop(),
	}
}

func (p *Provisioner) SetProgramLogger(l mintdom.ProgramLogger) {
	if p == nil {
		return
	}
	p.programLog = l
}

func (p *Provisioner) SetMetrics(m *Metrics) {
	if p == nil {
		return
	}
	p.metrics = m
}

func (p *Provisioner) SetLogger(l zerolog.Logger) {
	if p == nil {
		return
	}
	p.logger = l.With().Str("component", "mint_provisioner").Logger()
}

// ProcessInstruction はホストから呼ばれるエントリポイントです。
// 命令データのデコードとアカウント検証を済ませてから Provision を呼びます。
func (p *Provisioner) ProcessInstruction(ctx context.Context, metas []types.AccountMeta, data []byte) error {
	req, err := mintdom.DecodeCreationRequest(data)
	if err != nil {
		return p.fail(mintdom.StageDecode, err)
	}

	accounts, err := mintdom.ParseAccountSet(metas)
	if err != nil {
		return p.fail(mintdom.StageAccounts, err)
	}

	return p.Provision(ctx, req, accounts)
}

// Provision は 3 ステップを順番に実行します。
// ステップ n が失敗したらステップ n+1 は呼びません。
func (p *Provisioner) Provision(ctx context.Context, req mintdom.CreationRequest, accounts mintdom.AccountSet) error {
	mintKey := accounts.Mint.PubKey
	authority := accounts.MintAuthority.PubKey

	log := p.logger.With().
		Str("mint", mintKey.ToBase58()).
		Str("mintAuthority", authority.ToBase58()).
		Logger()

	// 1) Mint アカウント作成
	p.msg("Creating mint account.................")
	p.msg("Mint: %s", mintKey.ToBase58())

	lamports, err := p.rent.MinimumBalance(mintdom.MintSize)
	if err != nil {
		return p.fail(mintdom.StageAllocate, err)
	}
	if err := p.allocator.CreateAccount(ctx, mintdom.AllocateInput{
		Payer:      accounts.Payer.PubKey,
		NewAccount: mintKey,
		Lamports:   lamports,
		Space:      mintdom.MintSize,
		Owner:      accounts.TokenProgram.PubKey,
	}); err != nil {
		return p.fail(mintdom.StageAllocate, err)
	}
	log.Debug().Uint64("lamports", lamports).Msg("mint account allocated")

	// 2) Mint 初期化（mint / freeze 権限は同じ mintAuthority）
	p.msg("Initializing mint account.......")
	p.msg("Mint: %s", mintKey.ToBase58())

	freeze := authority
	if err := p.initializer.InitializeMint(ctx, mintdom.InitializeMintInput{
		TokenProgram:    accounts.TokenProgram.PubKey,
		Mint:            mintKey,
		MintAuthority:   authority,
		FreezeAuthority: &freeze,
		Decimals:        req.Decimals,
	}); err != nil {
		return p.fail(mintdom.StageInitialize, err)
	}
	log.Debug().Uint8("decimals", req.Decimals).Msg("mint initialized")

	// 3) Metadata アカウント作成
	p.msg("Creating metadata account.................")
	p.msg("Metadata account address: %s", accounts.Metadata.PubKey.ToBase58())

	rentKey := accounts.Rent.PubKey
	if err := p.attacher.CreateMetadata(ctx, mintdom.CreateMetadataInput{
		Metadata:                accounts.Metadata.PubKey,
		Mint:                    mintKey,
		MintAuthority:           authority,
		Payer:                   accounts.Payer.PubKey,
		UpdateAuthority:         authority,
		UpdateAuthorityIsSigner: accounts.MintAuthority.IsSigner,
		SystemProgram:           accounts.SystemProgram.PubKey,
		Rent:                    &rentKey,
		Name:                    req.Title,
		Symbol:                  req.Symbol,
		URI:                     req.URI,
		SellerFeeBasisPoints:    0,
		Creators:                nil,
		IsMutable:               true,
	}); err != nil {
		return p.fail(mintdom.StageMetadata, err)
	}

	p.msg("Token mint created successfully")
	log.Info().
		Str("metadata", accounts.Metadata.PubKey.ToBase58()).
		Str("symbol", req.Symbol).
		Msg("token mint created")
	p.metrics.observe(nil)
	return nil
}

func (p *Provisioner) fail(stage mintdom.Stage, err error) error {
	pe := mintdom.NewProvisionError(stage, err)
	p.logger.Warn().Err(pe.Err).Str("stage", string(pe.Stage)).Msg("mint provisioning failed")
	p.metrics.observe(pe)
	return pe
}

func (p *Provisioner) msg(format string, args ...any) {
	if p.programLog == nil {
		return
	}
	p.programLog.Logf(format, args...)
}
