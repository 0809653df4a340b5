// internal/domain/mint/ports.go
package mint

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
)

// ========================================
// 委譲呼び出し (cross-call) の入力（契約のみ）
// ========================================

// AllocateInput は system プログラムの CreateAccount に渡す値です。
type AllocateInput struct {
	Payer      common.PublicKey
	NewAccount common.PublicKey
	Lamports   uint64
	Space      uint64
	Owner      common.PublicKey
}

// InitializeMintInput は token プログラムの InitializeMint に渡す値です。
type InitializeMintInput struct {
	TokenProgram    common.PublicKey
	Mint            common.PublicKey
	MintAuthority   common.PublicKey
	FreezeAuthority *common.PublicKey
	Decimals        uint8
}

// CreateMetadataInput は metadata プログラムの CreateMetadataAccountV3 に渡す値です。
// collection / uses / collectionDetails は常に none なので持ちません。
type CreateMetadataInput struct {
	Metadata                common.PublicKey
	Mint                    common.PublicKey
	MintAuthority           common.PublicKey
	Payer                   common.PublicKey
	UpdateAuthority         common.PublicKey
	UpdateAuthorityIsSigner bool
	SystemProgram           common.PublicKey
	Rent                    *common.PublicKey

	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	IsMutable            bool
}

// ========================================
// Ports
// ========================================

// AccountAllocator は mint 用ストレージを確保する外部権限です。
type AccountAllocator interface {
	CreateAccount(ctx context.Context, in AllocateInput) error
}

// MintInitializer は確保済みストレージに mint 不変条件を書き込む外部権限です。
type MintInitializer interface {
	InitializeMint(ctx context.Context, in InitializeMintInput) error
}

// MetadataAttacher は mint に metadata レコードを紐づける外部権限です。
type MetadataAttacher interface {
	CreateMetadata(ctx context.Context, in CreateMetadataInput) error
}

// RentSysvar は rent 免除に必要な最小残高を計算します。
// 計算がオーバーフローした場合はエラーを返します。
type RentSysvar interface {
	MinimumBalance(space uint64) (uint64, error)
}

// ProgramLogger はホストのプログラムログ（msg 相当）へ書き込みます。
type ProgramLogger interface {
	Logf(format string, args ...any)
}
