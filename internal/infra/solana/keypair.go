// internal/infra/solana/keypair.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
)

var ErrKeypairSourceEmpty = errors.New("keypair: source is empty")

// GenerateKeypair は新しい ed25519 keypair を作り、
// Solana CLI 互換の JSON 配列 ([int,...] 64 要素) と一緒に返します。
func GenerateKeypair() (types.Account, []byte, error) {
	acc := types.NewAccount()
	data, err := EncodeKeypairJSON(acc)
	if err != nil {
		return types.Account{}, nil, err
	}
	return acc, data, nil
}

// EncodeKeypairJSON は keypair を Solana CLI 互換の JSON 配列にします。
func EncodeKeypairJSON(acc types.Account) ([]byte, error) {
	secret := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		secret[i] = int(b)
	}
	data, err := json.Marshal(secret)
	if err != nil {
		return nil, fmt.Errorf("marshal secret key json: %w", err)
	}
	return data, nil
}

// LoadKeypairFile は solana-keygen 形式の keypair ファイルを読み込みます。
func LoadKeypairFile(path string) (types.Account, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return types.Account{}, ErrKeypairSourceEmpty
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair %s: %w", path, err)
	}
	return ParseKeypairJSON(data)
}

// LoadKeypairSecret は Secret Manager の Secret Version から keypair を復元します。
//
// secretName には
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
//
// のような Secret Version のフルパスを渡してください。
func LoadKeypairSecret(ctx context.Context, secretName string) (types.Account, error) {
	secretName = strings.TrimSpace(secretName)
	if secretName == "" {
		return types.Account{}, ErrKeypairSourceEmpty
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return types.Account{}, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return types.Account{}, fmt.Errorf("AccessSecretVersion: %w", err)
	}
	if resp.GetPayload() == nil {
		return types.Account{}, fmt.Errorf("secret %s has no payload", secretName)
	}
	return ParseKeypairJSON(resp.GetPayload().GetData())
}

// ParseKeypairJSON は keypair JSON から types.Account を復元します。
// - 正: [u8;64] を []byte で受け取る
// - 互換: [int,...] を []int で受けてから []byte に変換
func ParseKeypairJSON(data []byte) (types.Account, error) {
	keyBytes, err := decodeKeypairJSON(data)
	if err != nil {
		return types.Account{}, err
	}
	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("AccountFromBytes: %w", err)
	}
	return acc, nil
}

func decodeKeypairJSON(data []byte) ([]byte, error) {
	// まずは []byte としてのデコードを試みる（base64 文字列）
	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err == nil && len(keyBytes) == ed25519.PrivateKeySize {
		return keyBytes, nil
	}

	// フォールバック: [int,int,...] の形式
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("unmarshal keypair json: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unexpected secret key length: got %d, want %d", len(ints), ed25519.PrivateKeySize)
	}

	keyBytes = make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("secret key byte %d out of range: %d", i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}
