// internal/infra/solana/delegates.go
package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	mintdom "narratives-mint/internal/domain/mint"
)

// Invoker は実行中の命令から別プログラムを呼び出す (cross-call) ためのポートです。
// ホストの InvokeContext が実装します。
type Invoker interface {
	Invoke(ix types.Instruction) error
}

// インターフェース実装チェック
var (
	_ mintdom.AccountAllocator = (*SystemAllocator)(nil)
	_ mintdom.MintInitializer  = (*TokenMintInitializer)(nil)
	_ mintdom.MetadataAttacher = (*MetaplexMetadataAttacher)(nil)
)

// ============================================================
// 1) system プログラム: CreateAccount
// ============================================================

type SystemAllocator struct {
	invoker Invoker
}

func NewSystemAllocator(inv Invoker) *SystemAllocator {
	return &SystemAllocator{invoker: inv}
}

func (a *SystemAllocator) CreateAccount(ctx context.Context, in mintdom.AllocateInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.invoker.Invoke(system.CreateAccount(system.CreateAccountParam{
		From:     in.Payer,
		New:      in.NewAccount,
		Owner:    in.Owner,
		Lamports: in.Lamports,
		Space:    in.Space,
	}))
}

// ============================================================
// 2) token プログラム: InitializeMint
// ============================================================

type TokenMintInitializer struct {
	invoker Invoker
}

func NewTokenMintInitializer(inv Invoker) *TokenMintInitializer {
	return &TokenMintInitializer{invoker: inv}
}

func (m *TokenMintInitializer) InitializeMint(ctx context.Context, in mintdom.InitializeMintInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ix := token.InitializeMint(token.InitializeMintParam{
		Decimals:   in.Decimals,
		Mint:       in.Mint,
		MintAuth:   in.MintAuthority,
		FreezeAuth: in.FreezeAuthority,
	})
	// 呼び出し先は渡された token プログラムのアカウント
	ix.ProgramID = in.TokenProgram
	return m.invoker.Invoke(ix)
}

// ============================================================
// 3) token-metadata プログラム: CreateMetadataAccountV3
// ============================================================

type MetaplexMetadataAttacher struct {
	invoker Invoker
}

func NewMetaplexMetadataAttacher(inv Invoker) *MetaplexMetadataAttacher {
	return &MetaplexMetadataAttacher{invoker: inv}
}

func (m *MetaplexMetadataAttacher) CreateMetadata(ctx context.Context, in mintdom.CreateMetadataInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var creators *[]token_metadata.Creator
	if in.Creators != nil {
		cs := make([]token_metadata.Creator, 0, len(in.Creators))
		for _, c := range in.Creators {
			cs = append(cs, token_metadata.Creator{
				Address:  c.Address,
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
		creators = &cs
	}

	ix := token_metadata.CreateMetadataAccountV3(
		token_metadata.CreateMetadataAccountV3Param{
			Metadata:                in.Metadata,
			Mint:                    in.Mint,
			MintAuthority:           in.MintAuthority,
			Payer:                   in.Payer,
			UpdateAuthority:         in.UpdateAuthority,
			UpdateAuthorityIsSigner: in.UpdateAuthorityIsSigner,
			IsMutable:               in.IsMutable,
			Data: token_metadata.DataV2{
				Name:                 in.Name,
				Symbol:               in.Symbol,
				Uri:                  in.URI,
				SellerFeeBasisPoints: in.SellerFeeBasisPoints,
				Creators:             creators,
				Collection:           nil,
				Uses:                 nil,
			},
			CollectionDetails: nil,
		},
	)
	if in.Rent != nil {
		ix.Accounts = withReadonlyMeta(ix.Accounts, *in.Rent)
	}
	return m.invoker.Invoke(ix)
}

// withReadonlyMeta は pk が未登録なら読み取り専用で末尾に追加します。
func withReadonlyMeta(metas []types.AccountMeta, pk common.PublicKey) []types.AccountMeta {
	for _, m := range metas {
		if m.PubKey == pk {
			return metas
		}
	}
	return append(metas, types.AccountMeta{PubKey: pk, IsSigner: false, IsWritable: false})
}
