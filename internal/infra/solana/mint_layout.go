// internal/infra/solana/mint_layout.go
package solana

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	bin "github.com/gagliardetto/binary"

	mintdom "narratives-mint/internal/domain/mint"
)

// SPL token の mint レイアウト (82 bytes)
//
//	COption<Pubkey> mint_authority   (4 + 32)
//	u64             supply
//	u8              decimals
//	bool            is_initialized
//	COption<Pubkey> freeze_authority (4 + 32)

// EncodeMint は mint 状態を token プログラムのレイアウトに書き出します。
func EncodeMint(s mintdom.MintState) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := layoutWriter{enc: bin.NewBinEncoder(buf)}

	w.cOption(s.MintAuthority)
	w.do(func(e *bin.Encoder) error { return e.WriteUint64(s.Supply, binary.LittleEndian) })
	w.do(func(e *bin.Encoder) error { return e.WriteUint8(s.Decimals) })
	w.do(func(e *bin.Encoder) error { return e.WriteBool(s.IsInitialized) })
	w.cOption(s.FreezeAuthority)

	if w.err != nil {
		return nil, fmt.Errorf("encode mint: %w", w.err)
	}
	if uint64(buf.Len()) != mintdom.MintSize {
		return nil, fmt.Errorf("encode mint: wrote %d bytes, want %d", buf.Len(), mintdom.MintSize)
	}
	return buf.Bytes(), nil
}

// DecodeMint は token プログラムのレイアウトから mint 状態を読みます。
func DecodeMint(data []byte) (mintdom.MintState, error) {
	if uint64(len(data)) != mintdom.MintSize {
		return mintdom.MintState{}, fmt.Errorf("decode mint: got %d bytes, want %d", len(data), mintdom.MintSize)
	}
	acc, err := token.MintAccountFromData(data)
	if err != nil {
		return mintdom.MintState{}, fmt.Errorf("decode mint: %w", err)
	}
	return mintdom.MintState{
		MintAuthority:   acc.MintAuthority,
		Supply:          acc.Supply,
		Decimals:        acc.Decimals,
		IsInitialized:   acc.IsInitialized,
		FreezeAuthority: acc.FreezeAuthority,
	}, nil
}

// layoutWriter は最初のエラーだけを保持しながら書き込みを続けます。
type layoutWriter struct {
	enc *bin.Encoder
	err error
}

func (w *layoutWriter) do(fn func(*bin.Encoder) error) {
	if w.err != nil {
		return
	}
	w.err = fn(w.enc)
}

func (w *layoutWriter) cOption(pk *common.PublicKey) {
	var tag uint32
	var key common.PublicKey
	if pk != nil {
		tag = 1
		key = *pk
	}
	w.do(func(e *bin.Encoder) error { return e.WriteUint32(tag, binary.LittleEndian) })
	w.do(func(e *bin.Encoder) error { return e.WriteBytes(key[:], false) })
}
