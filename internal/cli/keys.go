// internal/cli/keys.go
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"gopkg.in/yaml.v3"

	mintdom "narratives-mint/internal/domain/mint"
	solanainfra "narratives-mint/internal/infra/solana"
)

// parseAddress は base58 のアドレスを検証付きで変換します。
func parseAddress(s string) (common.PublicKey, error) {
	s = strings.TrimSpace(s)
	pk := common.PublicKeyFromString(s)
	if s == "" || pk.ToBase58() != s {
		return common.PublicKey{}, fmt.Errorf("invalid address %q", s)
	}
	return pk, nil
}

// loadSigner はファイル → Secret Manager の順で keypair を探します。
// どちらも空なら fallback を返します（fallback も nil ならエラー）。
func loadSigner(ctx context.Context, name, file, secret string, fallback *types.Account) (types.Account, error) {
	switch {
	case strings.TrimSpace(file) != "":
		acc, err := solanainfra.LoadKeypairFile(file)
		if err != nil {
			return types.Account{}, fmt.Errorf("%s keypair: %w", name, err)
		}
		return acc, nil
	case strings.TrimSpace(secret) != "":
		acc, err := solanainfra.LoadKeypairSecret(ctx, secret)
		if err != nil {
			return types.Account{}, fmt.Errorf("%s keypair (secret manager): %w", name, err)
		}
		return acc, nil
	case fallback != nil:
		return *fallback, nil
	default:
		return types.Account{}, fmt.Errorf("%s keypair is required", name)
	}
}

// loadRequestFile は YAML の作成リクエストを読み込みます。
//
//	title: Narratives Demo
//	symbol: NRTV
//	uri: https://example.com/demo.json
//	decimals: 0
func loadRequestFile(path string) (mintdom.CreationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mintdom.CreationRequest{}, fmt.Errorf("read request %s: %w", path, err)
	}
	var req mintdom.CreationRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return mintdom.CreationRequest{}, fmt.Errorf("parse request %s: %w", path, err)
	}
	return req, nil
}
