// internal/infra/solana/reader.go
package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"

	appmint "narratives-mint/internal/application/mint"
	mintdom "narratives-mint/internal/domain/mint"
	"narratives-mint/internal/infra/ledger"
)

// AccountSource はコミット済みアカウントを返します（runtime.Runtime が実装）。
type AccountSource interface {
	Account(ctx context.Context, addr common.PublicKey) (ledger.Account, error)
}

// LedgerReader は appmint.TokenReader の実装です。
type LedgerReader struct {
	src AccountSource
}

var _ appmint.TokenReader = (*LedgerReader)(nil)

func NewLedgerReader(src AccountSource) *LedgerReader {
	return &LedgerReader{src: src}
}

func (r *LedgerReader) ReadMint(ctx context.Context, mint common.PublicKey) (mintdom.MintState, error) {
	acc, err := r.src.Account(ctx, mint)
	if err != nil {
		return mintdom.MintState{}, err
	}
	if acc.Owner != common.TokenProgramID || len(acc.Data) == 0 {
		return mintdom.MintState{}, appmint.ErrNotFound
	}
	state, err := DecodeMint(acc.Data)
	if err != nil {
		return mintdom.MintState{}, err
	}
	if !state.IsInitialized {
		return mintdom.MintState{}, appmint.ErrNotFound
	}
	return state, nil
}

func (r *LedgerReader) ReadMetadata(ctx context.Context, metadata common.PublicKey) (mintdom.MetadataRecord, error) {
	acc, err := r.src.Account(ctx, metadata)
	if err != nil {
		return mintdom.MetadataRecord{}, err
	}
	if acc.Owner != common.MetaplexTokenMetaProgramID || len(acc.Data) == 0 {
		return mintdom.MetadataRecord{}, appmint.ErrNotFound
	}
	return DecodeMetadataRecord(acc.Data)
}

func (r *LedgerReader) MetadataAddress(mint common.PublicKey) (common.PublicKey, error) {
	return MetadataAddress(mint)
}
