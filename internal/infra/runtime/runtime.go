// internal/infra/runtime/runtime.go
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"narratives-mint/internal/infra/ledger"
)

// SysvarOwnerID は sysvar アカウントの owner です。
var SysvarOwnerID = common.PublicKeyFromString("Sysvar1111111111111111111111111111111111111")

// Program はホストに登録されるオンチェーンプログラムです。
type Program interface {
	Process(ic *InvokeContext, accounts []types.AccountMeta, data []byte) error
}

// ProgramFunc は関数を Program として扱うためのアダプタです。
type ProgramFunc func(ic *InvokeContext, accounts []types.AccountMeta, data []byte) error

func (f ProgramFunc) Process(ic *InvokeContext, accounts []types.AccountMeta, data []byte) error {
	return f(ic, accounts, data)
}

// Transaction は署名者集合と命令列です。
// 命令はすべて成功した場合のみまとめて反映されます。
type Transaction struct {
	Instructions []types.Instruction
	Signers      []common.PublicKey
}

// Receipt は実行結果（プログラムログなど）です。失敗時も返されます。
type Receipt struct {
	ID        uuid.UUID
	Logs      []string
	Committed bool
}

// Runtime はプログラムを登録し、トランザクションを ledger 上で実行するホストです。
type Runtime struct {
	mu       sync.Mutex
	db       *ledger.DB
	programs map[common.PublicKey]Program
	logger   zerolog.Logger
}

// New は組み込みプログラム (system / token / token-metadata) を登録済みの Runtime を返し、
// rent sysvar を ledger に書き込みます。
func New(db *ledger.DB, rent Rent, logger zerolog.Logger) (*Runtime, error) {
	if db == nil {
		return nil, fmt.Errorf("runtime: ledger is nil")
	}
	r := &Runtime{
		db:       db,
		programs: make(map[common.PublicKey]Program),
		logger:   logger.With().Str("component", "runtime").Logger(),
	}
	r.Register(common.SystemProgramID, ProgramFunc(processSystem))
	r.Register(common.TokenProgramID, ProgramFunc(processToken))
	r.Register(common.MetaplexTokenMetaProgramID, ProgramFunc(processMetadata))

	if err := r.writeRentSysvar(rent); err != nil {
		return nil, err
	}
	return r, nil
}

// Register は programID にプログラムを割り当てます（既存の割り当ては上書き）。
func (r *Runtime) Register(programID common.PublicKey, p Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[programID] = p
}

func (r *Runtime) writeRentSysvar(rent Rent) error {
	data, err := encodeRent(rent)
	if err != nil {
		return fmt.Errorf("runtime: encode rent sysvar: %w", err)
	}
	txn := r.db.Begin()
	defer txn.Discard()

	lamports, err := rent.MinimumBalance(uint64(len(data)))
	if err != nil {
		// 極端な rent 設定でも sysvar 自体は書き込む
		lamports = 1
	}
	if err := txn.Put(common.SysVarRentPubkey, ledger.Account{
		Lamports: lamports,
		Owner:    SysvarOwnerID,
		Data:     data,
	}); err != nil {
		return err
	}
	return txn.Commit()
}

// Execute はトランザクションを実行します。
// いずれかの命令が失敗した場合は *TransactionError を返し、ledger は変更されません。
func (r *Runtime) Execute(ctx context.Context, tx Transaction) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rc := &Receipt{ID: uuid.New()}
	log := r.logger.With().Str("tx", rc.ID.String()).Logger()

	if len(tx.Instructions) == 0 {
		return rc, ErrEmptyTransaction
	}
	if err := ctx.Err(); err != nil {
		return rc, err
	}

	signers := make(map[common.PublicKey]struct{}, len(tx.Signers))
	for _, s := range tx.Signers {
		signers[s] = struct{}{}
	}

	txn := r.db.Begin()
	defer txn.Discard()

	for i, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			if !m.IsSigner {
				continue
			}
			if _, ok := signers[m.PubKey]; !ok {
				err := &TransactionError{
					Instruction: i,
					Err:         fmt.Errorf("%w: %s", ErrMissingRequiredSignature, m.PubKey.ToBase58()),
				}
				log.Warn().Err(err).Msg("signature check failed")
				return rc, err
			}
		}

		ic := &InvokeContext{ctx: ctx, rt: r, txn: txn, receipt: rc}
		if err := ic.call(ix); err != nil {
			log.Warn().Err(err).Int("instruction", i).Msg("transaction rolled back")
			return rc, &TransactionError{Instruction: i, Err: err}
		}
	}

	if err := txn.Commit(); err != nil {
		return rc, fmt.Errorf("runtime: commit: %w", err)
	}
	rc.Committed = true
	log.Debug().Int("instructions", len(tx.Instructions)).Msg("transaction committed")
	return rc, nil
}

// Airdrop は addr に lamports を加算します（テスト / ローカル用途）。
func (r *Runtime) Airdrop(ctx context.Context, addr common.PublicKey, lamports uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	txn := r.db.Begin()
	defer txn.Discard()

	acc, err := txn.Get(addr)
	if err != nil {
		return err
	}
	if acc.Lamports+lamports < acc.Lamports {
		return fmt.Errorf("%w: %s", ErrLamportsOverflow, addr.ToBase58())
	}
	acc.Lamports += lamports
	if err := txn.Put(addr, acc); err != nil {
		return err
	}
	return txn.Commit()
}

// Account はコミット済みのアカウント状態を返します。存在しない場合は空のアカウントです。
func (r *Runtime) Account(ctx context.Context, addr common.PublicKey) (ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Account{}, err
	}
	return r.db.Get(addr)
}

// Rent は現在の rent sysvar を返します。
func (r *Runtime) Rent(ctx context.Context) (Rent, error) {
	acc, err := r.Account(ctx, common.SysVarRentPubkey)
	if err != nil {
		return Rent{}, err
	}
	return decodeRent(acc.Data)
}

func (r *Runtime) program(id common.PublicKey) (Program, bool) {
	p, ok := r.programs[id]
	return p, ok
}
