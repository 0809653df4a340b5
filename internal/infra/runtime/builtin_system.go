// internal/infra/runtime/builtin_system.go
package runtime

import (
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	bin "github.com/gagliardetto/binary"

	"narratives-mint/internal/infra/ledger"
)

// MaxPermittedDataLength はアカウント 1 つに割り当てられるデータ長の上限 (10 MiB) です。
const MaxPermittedDataLength uint64 = 10 * 1024 * 1024

const systemInstructionCreateAccount uint32 = 0

// processSystem は system プログラムのうち CreateAccount のみを扱います。
func processSystem(ic *InvokeContext, metas []types.AccountMeta, data []byte) error {
	dec := bin.NewBinDecoder(data)
	kind, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return fmt.Errorf("%w: system: %v", ErrInvalidInstructionData, err)
	}
	switch kind {
	case systemInstructionCreateAccount:
		return systemCreateAccount(ic, metas, dec)
	default:
		return fmt.Errorf("%w: system: unsupported instruction %d", ErrInvalidInstructionData, kind)
	}
}

func systemCreateAccount(ic *InvokeContext, metas []types.AccountMeta, dec *bin.Decoder) error {
	lamports, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return fmt.Errorf("%w: create account lamports: %v", ErrInvalidInstructionData, err)
	}
	space, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return fmt.Errorf("%w: create account space: %v", ErrInvalidInstructionData, err)
	}
	ownerBytes, err := dec.ReadNBytes(32)
	if err != nil {
		return fmt.Errorf("%w: create account owner: %v", ErrInvalidInstructionData, err)
	}
	owner := common.PublicKeyFromBytes(ownerBytes)

	if len(metas) < 2 {
		return fmt.Errorf("%w: create account needs 2, got %d", ErrNotEnoughAccountKeys, len(metas))
	}
	from, to := metas[0].PubKey, metas[1].PubKey

	if !ic.IsSigner(from) {
		return fmt.Errorf("%w: funding account %s", ErrMissingRequiredSignature, from.ToBase58())
	}
	if !ic.IsSigner(to) {
		return fmt.Errorf("%w: new account %s", ErrMissingRequiredSignature, to.ToBase58())
	}
	if space > MaxPermittedDataLength {
		return fmt.Errorf("%w: %d > %d", ErrSpaceTooLarge, space, MaxPermittedDataLength)
	}

	toAcc, err := ic.Get(to)
	if err != nil {
		return err
	}
	if !toAcc.IsEmpty() {
		ic.Logf("Create Account: account Address { address: %s, base: None } already in use", to.ToBase58())
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, to.ToBase58())
	}

	fromAcc, err := ic.Get(from)
	if err != nil {
		return err
	}
	if len(fromAcc.Data) != 0 {
		return fmt.Errorf("%w: funding account %s carries data", ErrInvalidAccountData, from.ToBase58())
	}
	if fromAcc.Lamports < lamports {
		ic.Logf("Transfer: insufficient lamports %d, need %d", fromAcc.Lamports, lamports)
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientFunds, from.ToBase58(), fromAcc.Lamports, lamports)
	}

	fromAcc.Lamports -= lamports
	if err := ic.Put(from, fromAcc); err != nil {
		return err
	}
	return ic.Put(to, ledger.Account{
		Lamports: lamports,
		Owner:    owner,
		Data:     make([]byte, space),
	})
}
