// internal/domain/mint/accounts.go
package mint

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// AccountCount は mint 作成命令が受け取るアカウント数です。
const AccountCount = 8

// AccountSet は位置で渡されるアカウント列を名前付きで保持します。
//
// 並び順（固定）:
//
//	0 mint            (signer, writable) 新規 mint アカウント
//	1 mintAuthority   mint / freeze / metadata update の権限
//	2 metadata        (writable) mint から導出される metadata PDA
//	3 payer           (signer, writable) rent を支払う
//	4 rent            rent sysvar
//	5 systemProgram
//	6 tokenProgram
//	7 metadataProgram
type AccountSet struct {
	Mint            types.AccountMeta
	MintAuthority   types.AccountMeta
	Metadata        types.AccountMeta
	Payer           types.AccountMeta
	Rent            types.AccountMeta
	SystemProgram   types.AccountMeta
	TokenProgram    types.AccountMeta
	MetadataProgram types.AccountMeta
}

// AccountFieldNames は位置 -> フィールド名の対応です。
var AccountFieldNames = [AccountCount]string{
	"mint",
	"mintAuthority",
	"metadata",
	"payer",
	"rent",
	"systemProgram",
	"tokenProgram",
	"metadataProgram",
}

// ParseAccountSet は位置指定のアカウント列を一度だけ検証して AccountSet に詰め替えます。
// 位置のエラーはフィールド名付きの ErrInvalidAccounts に変換します。
//
// metadata が mint の PDA かどうかはここでは見ません（metadata プログラム側の不変条件）。
func ParseAccountSet(metas []types.AccountMeta) (AccountSet, error) {
	if len(metas) < AccountCount {
		return AccountSet{}, fmt.Errorf(
			"%w: missing %s (index %d): got %d accounts, want %d",
			ErrInvalidAccounts, AccountFieldNames[len(metas)], len(metas), len(metas), AccountCount,
		)
	}

	set := AccountSet{
		Mint:            metas[0],
		MintAuthority:   metas[1],
		Metadata:        metas[2],
		Payer:           metas[3],
		Rent:            metas[4],
		SystemProgram:   metas[5],
		TokenProgram:    metas[6],
		MetadataProgram: metas[7],
	}
	if err := set.validate(); err != nil {
		return AccountSet{}, err
	}
	return set, nil
}

// Metas は AccountSet を契約どおりの順序に戻します。
func (s AccountSet) Metas() []types.AccountMeta {
	return []types.AccountMeta{
		s.Mint,
		s.MintAuthority,
		s.Metadata,
		s.Payer,
		s.Rent,
		s.SystemProgram,
		s.TokenProgram,
		s.MetadataProgram,
	}
}

func (s AccountSet) validate() error {
	if err := requireFlags("mint", s.Mint, true, true); err != nil {
		return err
	}
	if err := requireFlags("metadata", s.Metadata, false, true); err != nil {
		return err
	}
	if err := requireFlags("payer", s.Payer, true, true); err != nil {
		return err
	}

	fixed := []struct {
		name string
		meta types.AccountMeta
		want common.PublicKey
	}{
		{"rent", s.Rent, common.SysVarRentPubkey},
		{"systemProgram", s.SystemProgram, common.SystemProgramID},
		{"tokenProgram", s.TokenProgram, common.TokenProgramID},
		{"metadataProgram", s.MetadataProgram, common.MetaplexTokenMetaProgramID},
	}
	for _, f := range fixed {
		if f.meta.PubKey != f.want {
			return fmt.Errorf("%w: %s: got %s, want %s",
				ErrInvalidAccounts, f.name, f.meta.PubKey.ToBase58(), f.want.ToBase58())
		}
	}
	return nil
}

func requireFlags(name string, m types.AccountMeta, signer, writable bool) error {
	if signer && !m.IsSigner {
		return fmt.Errorf("%w: %s (%s) must be a signer", ErrInvalidAccounts, name, m.PubKey.ToBase58())
	}
	if writable && !m.IsWritable {
		return fmt.Errorf("%w: %s (%s) must be writable", ErrInvalidAccounts, name, m.PubKey.ToBase58())
	}
	return nil
}
