// internal/infra/solana/builder.go
package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	mintdom "narratives-mint/internal/domain/mint"
)

// CreateTokenAccounts は mint 作成命令に渡す可変アカウントです。
// Metadata がゼロ値なら mint から PDA を導出します。
type CreateTokenAccounts struct {
	Mint          common.PublicKey
	MintAuthority common.PublicKey
	Metadata      common.PublicKey
	Payer         common.PublicKey
}

// NewCreateTokenInstruction はクライアント側で mint 作成命令を組み立てます。
// アカウントは契約どおりの 8 個を固定順で並べます。
func NewCreateTokenInstruction(
	programID common.PublicKey,
	accounts CreateTokenAccounts,
	req mintdom.CreationRequest,
) (types.Instruction, error) {
	data, err := req.Encode()
	if err != nil {
		return types.Instruction{}, err
	}

	metadata := accounts.Metadata
	if metadata == (common.PublicKey{}) {
		metadata, err = MetadataAddress(accounts.Mint)
		if err != nil {
			return types.Instruction{}, fmt.Errorf("derive metadata address: %w", err)
		}
	}

	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: accounts.Mint, IsSigner: true, IsWritable: true},
			{PubKey: accounts.MintAuthority, IsSigner: true, IsWritable: false},
			{PubKey: metadata, IsSigner: false, IsWritable: true},
			{PubKey: accounts.Payer, IsSigner: true, IsWritable: true},
			{PubKey: common.SysVarRentPubkey, IsSigner: false, IsWritable: false},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.MetaplexTokenMetaProgramID, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}
