package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narratives-mint/internal/infra/ledger"
	"narratives-mint/internal/infra/solana"
)

const testFunds uint64 = 10_000_000_000

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	db, err := ledger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rt, err := New(db, DefaultRent(), zerolog.Nop())
	require.NoError(t, err)
	return rt
}

func fundedAccount(t *testing.T, rt *Runtime) types.Account {
	t.Helper()
	acc := types.NewAccount()
	require.NoError(t, rt.Airdrop(context.Background(), acc.PublicKey, testFunds))
	return acc
}

func account(t *testing.T, rt *Runtime, addr common.PublicKey) ledger.Account {
	t.Helper()
	acc, err := rt.Account(context.Background(), addr)
	require.NoError(t, err)
	return acc
}

func createMintIxs(payer, mint, authority common.PublicKey, lamports uint64, decimals uint8) []types.Instruction {
	return []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      mint,
			Owner:    common.TokenProgramID,
			Lamports: lamports,
			Space:    82,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   decimals,
			Mint:       mint,
			MintAuth:   authority,
			FreezeAuth: &authority,
		}),
	}
}

func TestNewWritesRentSysvar(t *testing.T) {
	rt := newTestRuntime(t)
	rent, err := rt.Rent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultRent(), rent)
	assert.Equal(t, SysvarOwnerID, account(t, rt, common.SysVarRentPubkey).Owner)
}

func TestExecuteCreatesAndInitializesMint(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	mint := types.NewAccount()
	authority := types.NewAccount()

	rc, err := rt.Execute(ctx, Transaction{
		Instructions: createMintIxs(payer.PublicKey, mint.PublicKey, authority.PublicKey, 1461600, 9),
		Signers:      []common.PublicKey{payer.PublicKey, mint.PublicKey},
	})
	require.NoError(t, err)
	assert.True(t, rc.Committed)
	assert.Contains(t, rc.Logs, "Program log: Instruction: InitializeMint")

	mintAcc := account(t, rt, mint.PublicKey)
	assert.Equal(t, common.TokenProgramID, mintAcc.Owner)
	assert.Equal(t, uint64(1461600), mintAcc.Lamports)

	state, err := solana.DecodeMint(mintAcc.Data)
	require.NoError(t, err)
	assert.True(t, state.IsInitialized)
	assert.Equal(t, uint8(9), state.Decimals)
	require.NotNil(t, state.MintAuthority)
	assert.Equal(t, authority.PublicKey, *state.MintAuthority)

	assert.Equal(t, testFunds-1461600, account(t, rt, payer.PublicKey).Lamports)
}

func TestExecuteRollsBackOnLaterFailure(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	mint := types.NewAccount()

	// rent 免除額に届かない mint は InitializeMint で失敗する
	rc, err := rt.Execute(ctx, Transaction{
		Instructions: createMintIxs(payer.PublicKey, mint.PublicKey, payer.PublicKey, 1000, 0),
		Signers:      []common.PublicKey{payer.PublicKey, mint.PublicKey},
	})
	require.Error(t, err)
	assert.False(t, rc.Committed)
	assert.ErrorIs(t, err, ErrNotRentExempt)

	var txErr *TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, 1, txErr.Instruction)

	assert.True(t, account(t, rt, mint.PublicKey).IsEmpty())
	assert.Equal(t, testFunds, account(t, rt, payer.PublicKey).Lamports)
}

func TestExecuteChecksTransactionSignatures(t *testing.T) {
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	mint := types.NewAccount()

	_, err := rt.Execute(context.Background(), Transaction{
		Instructions: createMintIxs(payer.PublicKey, mint.PublicKey, payer.PublicKey, 1461600, 0)[:1],
		Signers:      []common.PublicKey{payer.PublicKey},
	})
	assert.ErrorIs(t, err, ErrMissingRequiredSignature)
}

func TestExecuteEmptyTransaction(t *testing.T) {
	rt := newTestRuntime(t)
	_, err := rt.Execute(context.Background(), Transaction{})
	assert.ErrorIs(t, err, ErrEmptyTransaction)
}

func TestSystemCreateAccountErrors(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	taken := fundedAccount(t, rt)
	fresh := types.NewAccount()

	tests := []struct {
		name string
		ix   types.Instruction
		want error
	}{
		{
			name: "insufficient funds",
			ix: system.CreateAccount(system.CreateAccountParam{
				From: payer.PublicKey, New: fresh.PublicKey, Owner: common.TokenProgramID,
				Lamports: testFunds + 1, Space: 82,
			}),
			want: ErrInsufficientFunds,
		},
		{
			name: "already in use",
			ix: system.CreateAccount(system.CreateAccountParam{
				From: payer.PublicKey, New: taken.PublicKey, Owner: common.TokenProgramID,
				Lamports: 1461600, Space: 82,
			}),
			want: ErrAccountAlreadyInUse,
		},
		{
			name: "space too large",
			ix: system.CreateAccount(system.CreateAccountParam{
				From: payer.PublicKey, New: fresh.PublicKey, Owner: common.TokenProgramID,
				Lamports: 1, Space: MaxPermittedDataLength + 1,
			}),
			want: ErrSpaceTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rt.Execute(ctx, Transaction{
				Instructions: []types.Instruction{tt.ix},
				Signers:      []common.PublicKey{payer.PublicKey, fresh.PublicKey, taken.PublicKey},
			})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, testFunds, account(t, rt, payer.PublicKey).Lamports)
		})
	}
}

func TestTokenInitializeMintTwice(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	mint := types.NewAccount()

	ixs := createMintIxs(payer.PublicKey, mint.PublicKey, payer.PublicKey, 1461600, 2)
	_, err := rt.Execute(ctx, Transaction{Instructions: ixs, Signers: []common.PublicKey{payer.PublicKey, mint.PublicKey}})
	require.NoError(t, err)

	_, err = rt.Execute(ctx, Transaction{Instructions: ixs[1:], Signers: []common.PublicKey{payer.PublicKey}})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestTokenInitializeMintWrongOwner(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	mint := types.NewAccount()

	ixs := createMintIxs(payer.PublicKey, mint.PublicKey, payer.PublicKey, 1461600, 2)
	create := system.CreateAccount(system.CreateAccountParam{
		From: payer.PublicKey, New: mint.PublicKey, Owner: common.MemoProgramID,
		Lamports: 1461600, Space: 82,
	})
	_, err := rt.Execute(ctx, Transaction{
		Instructions: []types.Instruction{create, ixs[1]},
		Signers:      []common.PublicKey{payer.PublicKey, mint.PublicKey},
	})
	assert.ErrorIs(t, err, ErrIncorrectProgramID)
	assert.True(t, account(t, rt, mint.PublicKey).IsEmpty())
}

// ============================================================
// cross-call rules
// ============================================================

func TestUnknownProgram(t *testing.T) {
	rt := newTestRuntime(t)
	_, err := rt.Execute(context.Background(), Transaction{
		Instructions: []types.Instruction{{ProgramID: types.NewAccount().PublicKey}},
	})
	assert.ErrorIs(t, err, ErrUnknownProgram)
}

func TestInvokeRejectsPrivilegeEscalation(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	dest := types.NewAccount()
	programID := types.NewAccount().PublicKey

	rt.Register(programID, ProgramFunc(func(ic *InvokeContext, metas []types.AccountMeta, _ []byte) error {
		return ic.Invoke(system.CreateAccount(system.CreateAccountParam{
			From: metas[0].PubKey, New: metas[1].PubKey, Owner: programID, Lamports: 1,
		}))
	}))

	_, err := rt.Execute(ctx, Transaction{
		Instructions: []types.Instruction{{
			ProgramID: programID,
			Accounts: []types.AccountMeta{
				{PubKey: payer.PublicKey, IsWritable: true},
				{PubKey: dest.PublicKey, IsSigner: true, IsWritable: true},
			},
		}},
		Signers: []common.PublicKey{dest.PublicKey},
	})
	assert.ErrorIs(t, err, ErrPrivilegeEscalation)
	assert.Equal(t, testFunds, account(t, rt, payer.PublicKey).Lamports)
}

func TestInvokeSignedWithProgramAddress(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	payer := fundedAccount(t, rt)
	programID := types.NewAccount().PublicKey

	seeds := [][]byte{[]byte("vault")}
	pda, bump, err := common.FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	signWith := func(bump uint8) ProgramFunc {
		return func(ic *InvokeContext, metas []types.AccountMeta, _ []byte) error {
			return ic.InvokeSigned(system.CreateAccount(system.CreateAccountParam{
				From: metas[0].PubKey, New: metas[1].PubKey, Owner: programID, Lamports: 5000, Space: 8,
			}), [][][]byte{{[]byte("vault"), {bump}}})
		}
	}
	tx := Transaction{
		Instructions: []types.Instruction{{
			ProgramID: programID,
			Accounts: []types.AccountMeta{
				{PubKey: payer.PublicKey, IsSigner: true, IsWritable: true},
				{PubKey: pda, IsWritable: true},
			},
		}},
		Signers: []common.PublicKey{payer.PublicKey},
	}

	rt.Register(programID, signWith(bump+1))
	_, err = rt.Execute(ctx, tx)
	require.Error(t, err)
	assert.True(t, account(t, rt, pda).IsEmpty())

	rt.Register(programID, signWith(bump))
	_, err = rt.Execute(ctx, tx)
	require.NoError(t, err)

	vault := account(t, rt, pda)
	assert.Equal(t, programID, vault.Owner)
	assert.Len(t, vault.Data, 8)
}

func TestInvokeDepthAndReentrancy(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	recursive := types.NewAccount().PublicKey
	a := types.NewAccount().PublicKey
	b := types.NewAccount().PublicKey

	rt.Register(recursive, ProgramFunc(func(ic *InvokeContext, _ []types.AccountMeta, data []byte) error {
		if data[0] == 0 {
			return nil
		}
		return ic.Invoke(types.Instruction{ProgramID: recursive, Data: []byte{data[0] - 1}})
	}))
	rt.Register(a, ProgramFunc(func(ic *InvokeContext, _ []types.AccountMeta, data []byte) error {
		if len(data) > 0 {
			return nil
		}
		return ic.Invoke(types.Instruction{ProgramID: b})
	}))
	rt.Register(b, ProgramFunc(func(ic *InvokeContext, _ []types.AccountMeta, _ []byte) error {
		return ic.Invoke(types.Instruction{ProgramID: a, Data: []byte{1}})
	}))

	run := func(ix types.Instruction) error {
		_, err := rt.Execute(ctx, Transaction{Instructions: []types.Instruction{ix}})
		return err
	}

	assert.NoError(t, run(types.Instruction{ProgramID: recursive, Data: []byte{MaxInvokeDepth - 1}}))
	assert.ErrorIs(t, run(types.Instruction{ProgramID: recursive, Data: []byte{MaxInvokeDepth}}), ErrCallDepth)
	assert.ErrorIs(t, run(types.Instruction{ProgramID: a}), ErrReentrancy)
}

func TestRepeatedSelfInvocation(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	self := types.NewAccount().PublicKey
	other := types.NewAccount().PublicKey

	// data[0] 回だけ自分自身を呼び、最後に data[1] == 1 なら other を経由して戻ってくる
	rt.Register(self, ProgramFunc(func(ic *InvokeContext, _ []types.AccountMeta, data []byte) error {
		if data[0] > 0 {
			return ic.Invoke(types.Instruction{ProgramID: self, Data: []byte{data[0] - 1, data[1]}})
		}
		if data[1] == 1 {
			return ic.Invoke(types.Instruction{ProgramID: other})
		}
		return nil
	}))
	rt.Register(other, ProgramFunc(func(ic *InvokeContext, _ []types.AccountMeta, _ []byte) error {
		return ic.Invoke(types.Instruction{ProgramID: self, Data: []byte{0, 0}})
	}))

	run := func(data ...byte) error {
		_, err := rt.Execute(ctx, Transaction{Instructions: []types.Instruction{{ProgramID: self, Data: data}}})
		return err
	}

	for n := byte(0); n < MaxInvokeDepth; n++ {
		assert.NoError(t, run(n, 0), "self calls=%d", n)
	}
	assert.ErrorIs(t, run(MaxInvokeDepth, 0), ErrCallDepth)
	assert.ErrorIs(t, run(1, 1), ErrReentrancy)
}

func TestPutOwnershipRules(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)
	victim := fundedAccount(t, rt)
	programID := types.NewAccount().PublicKey

	rt.Register(programID, ProgramFunc(func(ic *InvokeContext, metas []types.AccountMeta, data []byte) error {
		acc, err := ic.Get(metas[0].PubKey)
		if err != nil {
			return err
		}
		switch data[0] {
		case 0:
			acc.Data = []byte{1}
		case 1:
			acc.Lamports--
		case 2:
			acc.Lamports++
		}
		return ic.Put(metas[0].PubKey, acc)
	}))

	run := func(op byte, writable bool) error {
		_, err := rt.Execute(ctx, Transaction{Instructions: []types.Instruction{{
			ProgramID: programID,
			Accounts:  []types.AccountMeta{{PubKey: victim.PublicKey, IsWritable: writable}},
			Data:      []byte{op},
		}}})
		return err
	}

	assert.ErrorIs(t, run(0, true), ErrExternalAccountModification)
	assert.ErrorIs(t, run(1, true), ErrExternalAccountModification)
	assert.ErrorIs(t, run(2, false), ErrReadonlyAccount)
	assert.NoError(t, run(2, true))
	assert.Equal(t, testFunds+1, account(t, rt, victim.PublicKey).Lamports)
}

func TestAirdropOverflow(t *testing.T) {
	rt := newTestRuntime(t)
	acc := fundedAccount(t, rt)
	err := rt.Airdrop(context.Background(), acc.PublicKey, ^uint64(0))
	assert.ErrorIs(t, err, ErrLamportsOverflow)
}
