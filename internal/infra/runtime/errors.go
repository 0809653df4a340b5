// internal/infra/runtime/errors.go
package runtime

import (
	"errors"
	"fmt"
)

// ------------------------------------------------------
// ホスト / 組み込みプログラムのエラー
// ------------------------------------------------------

var (
	ErrEmptyTransaction            = errors.New("runtime: transaction has no instructions")
	ErrUnknownProgram              = errors.New("runtime: unknown program")
	ErrMissingRequiredSignature    = errors.New("runtime: missing required signature")
	ErrMissingAccount              = errors.New("runtime: account not passed to instruction")
	ErrPrivilegeEscalation         = errors.New("runtime: cross-program invocation with unauthorized signer or writable account")
	ErrCallDepth                   = errors.New("runtime: cross-program invocation call depth too deep")
	ErrReentrancy                  = errors.New("runtime: cross-program invocation reentrancy not allowed")
	ErrReadonlyAccount             = errors.New("runtime: instruction modified a read-only account")
	ErrExternalAccountModification = errors.New("runtime: instruction modified an account it does not own")
	ErrInvalidSeeds                = errors.New("runtime: invalid program address seeds")
	ErrRentOverflow                = errors.New("runtime: rent computation overflow")
	ErrLamportsOverflow            = errors.New("runtime: lamports overflow")

	ErrInvalidInstructionData = errors.New("program: invalid instruction data")
	ErrNotEnoughAccountKeys   = errors.New("program: not enough account keys")
	ErrAccountAlreadyInUse    = errors.New("program: account already in use")
	ErrInsufficientFunds      = errors.New("program: insufficient funds")
	ErrSpaceTooLarge          = errors.New("program: requested space exceeds the maximum")
	ErrInvalidAccountData     = errors.New("program: invalid account data")
	ErrIncorrectProgramID     = errors.New("program: incorrect program id")
	ErrInvalidSysvar          = errors.New("program: invalid sysvar account")
	ErrAlreadyInitialized     = errors.New("program: account already initialized")
	ErrNotRentExempt          = errors.New("program: account is not rent exempt")
	ErrUninitializedMint      = errors.New("program: mint is not initialized")
	ErrInvalidMintAuthority   = errors.New("program: invalid mint authority")
	ErrInvalidMetadataKey     = errors.New("program: metadata address does not match the mint derivation")
	ErrMetadataFieldTooLong   = errors.New("program: metadata field too long")
	ErrInvalidBasisPoints     = errors.New("program: seller fee basis points out of range")
	ErrInvalidCreators        = errors.New("program: invalid creators")
	ErrVerifiedCollection     = errors.New("program: collection cannot be verified on creation")
)

// TransactionError はトランザクション中の命令の失敗を表します。
// この場合トランザクションの変更はすべて破棄されています。
type TransactionError struct {
	Instruction int
	Err         error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("runtime: instruction %d failed: %v", e.Instruction, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
