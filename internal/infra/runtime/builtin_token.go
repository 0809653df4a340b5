// internal/infra/runtime/builtin_token.go
package runtime

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	bin "github.com/gagliardetto/binary"

	mintdom "narratives-mint/internal/domain/mint"
	"narratives-mint/internal/infra/solana"
)

const tokenInstructionInitializeMint uint8 = 0

// is_initialized のオフセット (COption<Pubkey> + u64 + u8)
const mintIsInitializedOffset = 4 + 32 + 8 + 1

// processToken は token プログラムのうち InitializeMint のみを扱います。
func processToken(ic *InvokeContext, metas []types.AccountMeta, data []byte) error {
	dec := bin.NewBinDecoder(data)
	kind, err := dec.ReadUint8()
	if err != nil {
		return fmt.Errorf("%w: token: %v", ErrInvalidInstructionData, err)
	}
	switch kind {
	case tokenInstructionInitializeMint:
		ic.Logf("Instruction: InitializeMint")
		return tokenInitializeMint(ic, metas, dec)
	default:
		return fmt.Errorf("%w: token: unsupported instruction %d", ErrInvalidInstructionData, kind)
	}
}

func tokenInitializeMint(ic *InvokeContext, metas []types.AccountMeta, dec *bin.Decoder) error {
	decimals, err := dec.ReadUint8()
	if err != nil {
		return fmt.Errorf("%w: decimals: %v", ErrInvalidInstructionData, err)
	}
	authBytes, err := dec.ReadNBytes(32)
	if err != nil {
		return fmt.Errorf("%w: mint authority: %v", ErrInvalidInstructionData, err)
	}
	mintAuthority := common.PublicKeyFromBytes(authBytes)

	var freezeAuthority *common.PublicKey
	tag, err := dec.ReadUint8()
	if err != nil {
		return fmt.Errorf("%w: freeze authority: %v", ErrInvalidInstructionData, err)
	}
	switch tag {
	case 0:
	case 1:
		fb, err := dec.ReadNBytes(32)
		if err != nil {
			return fmt.Errorf("%w: freeze authority: %v", ErrInvalidInstructionData, err)
		}
		pk := common.PublicKeyFromBytes(fb)
		freezeAuthority = &pk
	default:
		return fmt.Errorf("%w: freeze authority tag %d", ErrInvalidInstructionData, tag)
	}

	if len(metas) < 2 {
		return fmt.Errorf("%w: initialize mint needs 2, got %d", ErrNotEnoughAccountKeys, len(metas))
	}
	mint := metas[0].PubKey
	if metas[1].PubKey != common.SysVarRentPubkey {
		return fmt.Errorf("%w: expected rent sysvar, got %s", ErrInvalidSysvar, metas[1].PubKey.ToBase58())
	}

	acc, err := ic.Get(mint)
	if err != nil {
		return err
	}
	if acc.Owner != ic.ProgramID() {
		return fmt.Errorf("%w: mint %s is owned by %s", ErrIncorrectProgramID, mint.ToBase58(), acc.Owner.ToBase58())
	}
	if uint64(len(acc.Data)) != mintdom.MintSize {
		return fmt.Errorf("%w: mint %s has %d bytes", ErrInvalidAccountData, mint.ToBase58(), len(acc.Data))
	}
	if acc.Data[mintIsInitializedOffset] != 0 {
		return fmt.Errorf("%w: mint %s", ErrAlreadyInitialized, mint.ToBase58())
	}

	need, err := ic.MinimumBalance(uint64(len(acc.Data)))
	if err != nil {
		return err
	}
	if acc.Lamports < need {
		return fmt.Errorf("%w: mint %s has %d, need %d", ErrNotRentExempt, mint.ToBase58(), acc.Lamports, need)
	}

	out, err := solana.EncodeMint(mintdom.MintState{
		MintAuthority:   &mintAuthority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freezeAuthority,
	})
	if err != nil {
		return err
	}
	acc.Data = out
	return ic.Put(mint, acc)
}
