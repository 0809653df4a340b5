// internal/application/mint/query.go
package mint

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"narratives-mint/internal/application/mint/dto"
	mintdom "narratives-mint/internal/domain/mint"
)

// ============================================================
// 読み取り用ポート
// ============================================================

// ErrNotFound は対象アカウントがコミット済み状態に存在しないことを表します。
var ErrNotFound = errors.New("mint query: not found")

// TokenReader はコミット済みのレジャーから mint / metadata を読み出すポートです。
// アカウントが無い（あるいは未初期化）場合は ErrNotFound を返す想定です。
type TokenReader interface {
	ReadMint(ctx context.Context, mint common.PublicKey) (mintdom.MintState, error)
	ReadMetadata(ctx context.Context, metadata common.PublicKey) (mintdom.MetadataRecord, error)
	MetadataAddress(mint common.PublicKey) (common.PublicKey, error)
}

// ============================================================
// Query
// ============================================================

// Query は作成済み mint の参照系ユースケースです。
type Query struct {
	reader TokenReader
}

func NewQuery(reader TokenReader) *Query {
	return &Query{reader: reader}
}

// GetToken は mint アドレスから mint 状態と metadata を返します。
// mint が無ければ ErrNotFound、metadata が無ければ Metadata = nil です。
func (q *Query) GetToken(ctx context.Context, mint common.PublicKey) (dto.TokenView, error) {
	if q == nil || q.reader == nil {
		return dto.TokenView{}, errors.New("mint query: reader is nil")
	}

	state, err := q.reader.ReadMint(ctx, mint)
	if err != nil {
		return dto.TokenView{}, fmt.Errorf("read mint %s: %w", mint.ToBase58(), err)
	}

	view := dto.TokenView{Mint: toMintDTO(mint, state)}

	metaAddr, err := q.reader.MetadataAddress(mint)
	if err != nil {
		return dto.TokenView{}, fmt.Errorf("metadata address: %w", err)
	}
	rec, err := q.reader.ReadMetadata(ctx, metaAddr)
	switch {
	case errors.Is(err, ErrNotFound):
		return view, nil
	case err != nil:
		return dto.TokenView{}, fmt.Errorf("read metadata %s: %w", metaAddr.ToBase58(), err)
	}

	md := toMetadataDTO(metaAddr, rec)
	view.Metadata = &md
	return view, nil
}

func toMintDTO(addr common.PublicKey, s mintdom.MintState) dto.MintStateDTO {
	return dto.MintStateDTO{
		Address:         addr.ToBase58(),
		MintAuthority:   base58Ptr(s.MintAuthority),
		FreezeAuthority: base58Ptr(s.FreezeAuthority),
		Supply:          s.Supply,
		Decimals:        s.Decimals,
		IsInitialized:   s.IsInitialized,
	}
}

func toMetadataDTO(addr common.PublicKey, r mintdom.MetadataRecord) dto.MetadataDTO {
	out := dto.MetadataDTO{
		Address:              addr.ToBase58(),
		UpdateAuthority:      r.UpdateAuthority.ToBase58(),
		Mint:                 r.Mint.ToBase58(),
		Name:                 r.Name,
		Symbol:               r.Symbol,
		URI:                  r.URI,
		SellerFeeBasisPoints: r.SellerFeeBasisPoints,
		CreatorCount:         len(r.Creators),
		HasCollection:        r.Collection != nil,
		HasUses:              r.Uses != nil,
		IsMutable:            r.IsMutable,
	}
	if r.TokenStandard != nil {
		ts := uint8(*r.TokenStandard)
		out.TokenStandard = &ts
	}
	return out
}

func base58Ptr(pk *common.PublicKey) *string {
	if pk == nil {
		return nil
	}
	s := pk.ToBase58()
	return &s
}
