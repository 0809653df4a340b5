// internal/infra/solana/pda.go
package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
)

// MetadataSeedPrefix は metadata PDA の先頭 seed です。
const MetadataSeedPrefix = "metadata"

// MetadataSeeds は mint の metadata PDA の seed 列（bump なし）を返します。
func MetadataSeeds(mint common.PublicKey) [][]byte {
	return [][]byte{
		[]byte(MetadataSeedPrefix),
		common.MetaplexTokenMetaProgramID.Bytes(),
		mint.Bytes(),
	}
}

// MetadataAddress は mint の metadata アカウントのアドレスを返します。
func MetadataAddress(mint common.PublicKey) (common.PublicKey, error) {
	pk, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}
	return pk, nil
}

// FindMetadataAddress は metadata PDA と bump を返します。
func FindMetadataAddress(mint common.PublicKey) (common.PublicKey, uint8, error) {
	pk, bump, err := common.FindProgramAddress(MetadataSeeds(mint), common.MetaplexTokenMetaProgramID)
	if err != nil {
		return common.PublicKey{}, 0, fmt.Errorf("FindProgramAddress: %w", err)
	}
	return pk, bump, nil
}
