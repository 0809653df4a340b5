// internal/domain/mint/request.go
package mint

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
)

// CreationRequest は mint 作成命令の引数です。
// borsh でフィールド順 (title, symbol, uri, decimals) にエンコードされます。
// 一度デコードしたら呼び出し中は変更しません。
type CreationRequest struct {
	Title    string `json:"title" yaml:"title"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	URI      string `json:"uri" yaml:"uri"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// DecodeCreationRequest は命令データを厳密にデコードします。
// - 長さプレフィックス不正 / バイト不足 / 余剰バイト / 不正な UTF-8 はすべて ErrDecoding
// - アカウントに触れる前に呼ばれる前提
func DecodeCreationRequest(data []byte) (CreationRequest, error) {
	dec := bin.NewBorshDecoder(data)

	title, err := readText(dec, "title")
	if err != nil {
		return CreationRequest{}, err
	}
	symbol, err := readText(dec, "symbol")
	if err != nil {
		return CreationRequest{}, err
	}
	uri, err := readText(dec, "uri")
	if err != nil {
		return CreationRequest{}, err
	}
	decimals, err := dec.ReadUint8()
	if err != nil {
		return CreationRequest{}, fmt.Errorf("%w: decimals: %v", ErrDecoding, err)
	}

	if rem := dec.Remaining(); rem != 0 {
		return CreationRequest{}, fmt.Errorf("%w: %d trailing bytes", ErrDecoding, rem)
	}

	return CreationRequest{
		Title:    title,
		Symbol:   symbol,
		URI:      uri,
		Decimals: decimals,
	}, nil
}

func readText(dec *bin.Decoder, field string) (string, error) {
	s, err := dec.ReadString()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecoding, field, err)
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: %s: invalid utf-8", ErrDecoding, field)
	}
	return s, nil
}

// Encode は CreationRequest を命令データ (borsh) に変換します。
// クライアント側の命令組み立てとテストで使います。
func (r CreationRequest) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	for _, s := range []string{r.Title, r.Symbol, r.URI} {
		if err := enc.WriteString(s); err != nil {
			return nil, fmt.Errorf("mint: encode request: %w", err)
		}
	}
	if err := enc.WriteUint8(r.Decimals); err != nil {
		return nil, fmt.Errorf("mint: encode request: %w", err)
	}
	return buf.Bytes(), nil
}
