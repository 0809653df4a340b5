// internal/infra/ledger/ledger.go
package ledger

import (
	"errors"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/dgraph-io/badger/v4"
	"github.com/near/borsh-go"
	"github.com/rs/zerolog"
)

var ErrReadOnly = errors.New("ledger: read-only transaction")

// Account はレジャー上の 1 アカウントです。
// 存在しないアドレスは lamports=0 / owner=system / data 空 として読めます。
type Account struct {
	Lamports   uint64
	Owner      common.PublicKey
	Executable bool
	Data       []byte
}

// EmptyAccount は未使用アドレスの状態を返します。
func EmptyAccount() Account {
	return Account{Owner: common.SystemProgramID}
}

// IsEmpty は未使用アドレスと同じ状態かどうかを返します。
func (a Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && !a.Executable && a.Owner == common.SystemProgramID
}

// Clone はデータを複製したコピーを返します。
func (a Account) Clone() Account {
	c := a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return c
}

// DB は badger を使ったアカウントストアです。
type DB struct {
	badger *badger.DB
}

// Open はアカウントストアを開きます。path が空ならインメモリで開きます。
func Open(path string, logger zerolog.Logger) (*DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, fmt.Errorf("ledger: create %q: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(badgerLogger{log: logger.With().Str("module", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ledger: open: %w", err)
	}
	return &DB{badger: db}, nil
}

// OpenInMemory はテスト用のインメモリストアを開きます。
func OpenInMemory() (*DB, error) {
	return Open("", zerolog.Nop())
}

func (d *DB) Close() error {
	if d == nil || d.badger == nil {
		return nil
	}
	return d.badger.Close()
}

// Begin は読み書きトランザクションを開始します。
// Commit するまで他のトランザクションからは変更が見えません。
func (d *DB) Begin() *Txn {
	return &Txn{txn: d.badger.NewTransaction(true), writable: true}
}

// View は読み取り専用トランザクションで fn を実行します。
func (d *DB) View(fn func(*Txn) error) error {
	txn := d.badger.NewTransaction(false)
	defer txn.Discard()
	return fn(&Txn{txn: txn})
}

// Get はコミット済み状態からアカウントを読みます。
func (d *DB) Get(addr common.PublicKey) (Account, error) {
	var out Account
	err := d.View(func(t *Txn) error {
		a, err := t.Get(addr)
		out = a
		return err
	})
	return out, err
}

// Txn はアカウント単位の読み書きを提供する badger トランザクションです。
// 自分の書き込みは同じ Txn 内の Get で見えます。
type Txn struct {
	txn      *badger.Txn
	writable bool
}

func (t *Txn) Get(addr common.PublicKey) (Account, error) {
	item, err := t.txn.Get(accountKey(addr))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return EmptyAccount(), nil
	}
	if err != nil {
		return Account{}, fmt.Errorf("ledger: get %s: %w", addr.ToBase58(), err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return Account{}, fmt.Errorf("ledger: get %s: %w", addr.ToBase58(), err)
	}
	return decodeAccount(val)
}

// Put はアカウントを書き込みます。空の状態になったアカウントは削除します。
func (t *Txn) Put(addr common.PublicKey, a Account) error {
	if !t.writable {
		return ErrReadOnly
	}
	if a.IsEmpty() {
		if err := t.txn.Delete(accountKey(addr)); err != nil {
			return fmt.Errorf("ledger: delete %s: %w", addr.ToBase58(), err)
		}
		return nil
	}
	val, err := encodeAccount(a)
	if err != nil {
		return err
	}
	if err := t.txn.Set(accountKey(addr), val); err != nil {
		return fmt.Errorf("ledger: put %s: %w", addr.ToBase58(), err)
	}
	return nil
}

func (t *Txn) Commit() error {
	if !t.writable {
		return ErrReadOnly
	}
	return t.txn.Commit()
}

// Discard は未コミットの変更をすべて捨てます。Commit 後に呼んでも安全です。
func (t *Txn) Discard() {
	t.txn.Discard()
}

// ------------------------------------------------------
// encoding
// ------------------------------------------------------

const accountPrefix = "acct/"

func accountKey(addr common.PublicKey) []byte {
	k := make([]byte, 0, len(accountPrefix)+len(addr))
	k = append(k, accountPrefix...)
	return append(k, addr.Bytes()...)
}

func encodeAccount(a Account) ([]byte, error) {
	b, err := borsh.Serialize(a)
	if err != nil {
		return nil, fmt.Errorf("ledger: encode account: %w", err)
	}
	return b, nil
}

func decodeAccount(b []byte) (Account, error) {
	var a Account
	if err := borsh.Deserialize(&a, b); err != nil {
		return Account{}, fmt.Errorf("ledger: decode account: %w", err)
	}
	return a, nil
}
