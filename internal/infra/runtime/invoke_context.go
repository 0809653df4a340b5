// internal/infra/runtime/invoke_context.go
package runtime

import (
	"bytes"
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"narratives-mint/internal/infra/ledger"
)

// MaxInvokeDepth は命令の入れ子（トップレベルを含む）の上限です。
const MaxInvokeDepth = 4

type frame struct {
	programID common.PublicKey
	metas     []types.AccountMeta
}

// meta は同一アドレスの複数エントリの権限を OR で合成して返します。
func (f frame) meta(addr common.PublicKey) (types.AccountMeta, bool) {
	out := types.AccountMeta{PubKey: addr}
	found := false
	for _, m := range f.metas {
		if m.PubKey != addr {
			continue
		}
		found = true
		out.IsSigner = out.IsSigner || m.IsSigner
		out.IsWritable = out.IsWritable || m.IsWritable
	}
	return out, found
}

// InvokeContext は実行中のプログラムに渡されるホストへの窓口です。
// アカウントの読み書きはトランザクションのスコープ内で行われます。
type InvokeContext struct {
	ctx     context.Context
	rt      *Runtime
	txn     *ledger.Txn
	receipt *Receipt
	stack   []frame
}

func (ic *InvokeContext) Context() context.Context { return ic.ctx }

// ProgramID は現在実行中のプログラムです。
func (ic *InvokeContext) ProgramID() common.PublicKey {
	return ic.current().programID
}

func (ic *InvokeContext) current() frame {
	if len(ic.stack) == 0 {
		return frame{}
	}
	return ic.stack[len(ic.stack)-1]
}

// IsSigner は現在の命令で addr が署名者として渡されているかを返します。
func (ic *InvokeContext) IsSigner(addr common.PublicKey) bool {
	m, ok := ic.current().meta(addr)
	return ok && m.IsSigner
}

// Get は現在の命令に渡されたアカウントを読みます。
func (ic *InvokeContext) Get(addr common.PublicKey) (ledger.Account, error) {
	if _, ok := ic.current().meta(addr); !ok {
		return ledger.Account{}, fmt.Errorf("%w: %s", ErrMissingAccount, addr.ToBase58())
	}
	return ic.txn.Get(addr)
}

// Put はアカウントを書き込みます。
// 書き込み可能として渡されたアカウントのみ変更でき、
// owner 以外のプログラムは lamports の加算しかできません。
func (ic *InvokeContext) Put(addr common.PublicKey, acc ledger.Account) error {
	f := ic.current()
	m, ok := f.meta(addr)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingAccount, addr.ToBase58())
	}
	if !m.IsWritable {
		return fmt.Errorf("%w: %s", ErrReadonlyAccount, addr.ToBase58())
	}

	prev, err := ic.txn.Get(addr)
	if err != nil {
		return err
	}
	if prev.Owner != f.programID {
		if acc.Owner != prev.Owner ||
			acc.Executable != prev.Executable ||
			!bytes.Equal(acc.Data, prev.Data) ||
			acc.Lamports < prev.Lamports {
			return fmt.Errorf("%w: %s (owner %s)", ErrExternalAccountModification, addr.ToBase58(), prev.Owner.ToBase58())
		}
	}
	return ic.txn.Put(addr, acc)
}

// Logf はプログラムログを Receipt に追記します。
func (ic *InvokeContext) Logf(format string, args ...any) {
	ic.receipt.Logs = append(ic.receipt.Logs, "Program log: "+fmt.Sprintf(format, args...))
}

func (ic *InvokeContext) hostLogf(format string, args ...any) {
	ic.receipt.Logs = append(ic.receipt.Logs, fmt.Sprintf(format, args...))
}

// Rent は rent sysvar を読みます。
func (ic *InvokeContext) Rent() (Rent, error) {
	acc, err := ic.txn.Get(common.SysVarRentPubkey)
	if err != nil {
		return Rent{}, err
	}
	return decodeRent(acc.Data)
}

// MinimumBalance は rent sysvar に基づく rent 免除の最小残高です。
func (ic *InvokeContext) MinimumBalance(space uint64) (uint64, error) {
	rent, err := ic.Rent()
	if err != nil {
		return 0, err
	}
	return rent.MinimumBalance(space)
}

// Invoke は現在の命令から別プログラムを呼び出します。
func (ic *InvokeContext) Invoke(ix types.Instruction) error {
	return ic.InvokeSigned(ix, nil)
}

// InvokeSigned は呼び出し元プログラムの PDA を署名者として加えて呼び出します。
// signerSeeds の各要素は bump を含む seed 列です。
func (ic *InvokeContext) InvokeSigned(ix types.Instruction, signerSeeds [][][]byte) error {
	if err := ic.ctx.Err(); err != nil {
		return err
	}
	caller := ic.current()

	pdaSigners := make(map[common.PublicKey]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		pk, err := common.CreateProgramAddress(seeds, caller.programID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		pdaSigners[pk] = struct{}{}
	}

	for _, m := range ix.Accounts {
		cm, ok := caller.meta(m.PubKey)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAccount, m.PubKey.ToBase58())
		}
		if m.IsSigner && !cm.IsSigner {
			if _, ok := pdaSigners[m.PubKey]; !ok {
				return fmt.Errorf("%w: signer %s", ErrPrivilegeEscalation, m.PubKey.ToBase58())
			}
		}
		if m.IsWritable && !cm.IsWritable {
			return fmt.Errorf("%w: writable %s", ErrPrivilegeEscalation, m.PubKey.ToBase58())
		}
	}
	return ic.call(ix)
}

func (ic *InvokeContext) call(ix types.Instruction) error {
	depth := len(ic.stack) + 1
	if depth > MaxInvokeDepth {
		return fmt.Errorf("%w: depth %d", ErrCallDepth, depth)
	}
	// スタック上のプログラムへの再入は、呼び出し元自身（自己再帰）の場合のみ許可
	last := ic.current().programID
	for _, f := range ic.stack {
		if f.programID == ix.ProgramID && last != ix.ProgramID {
			return fmt.Errorf("%w: %s", ErrReentrancy, ix.ProgramID.ToBase58())
		}
	}
	prog, ok := ic.rt.program(ix.ProgramID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID.ToBase58())
	}

	pid := ix.ProgramID.ToBase58()
	ic.stack = append(ic.stack, frame{programID: ix.ProgramID, metas: ix.Accounts})
	defer func() { ic.stack = ic.stack[:len(ic.stack)-1] }()

	ic.hostLogf("Program %s invoke [%d]", pid, depth)
	if err := prog.Process(ic, ix.Accounts, ix.Data); err != nil {
		ic.hostLogf("Program %s failed: %v", pid, err)
		return err
	}
	ic.hostLogf("Program %s success", pid)
	return nil
}
