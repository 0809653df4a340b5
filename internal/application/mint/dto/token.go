// internal/application/mint/dto/token.go
package dto

// MintStateDTO は mint レコードの表示用 DTO です。
// - アドレスは base58 文字列
// - 権限が無い場合は nil
type MintStateDTO struct {
	Address         string  `json:"address"`
	MintAuthority   *string `json:"mintAuthority,omitempty"`
	FreezeAuthority *string `json:"freezeAuthority,omitempty"`
	Supply          uint64  `json:"supply"`
	Decimals        uint8   `json:"decimals"`
	IsInitialized   bool    `json:"isInitialized"`
}

// MetadataDTO は metadata レコードの表示用 DTO です。
type MetadataDTO struct {
	Address              string `json:"address"`
	UpdateAuthority      string `json:"updateAuthority"`
	Mint                 string `json:"mint"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	URI                  string `json:"uri"`
	SellerFeeBasisPoints uint16 `json:"sellerFeeBasisPoints"`
	CreatorCount         int    `json:"creatorCount"`
	HasCollection        bool   `json:"hasCollection"`
	HasUses              bool   `json:"hasUses"`
	IsMutable            bool   `json:"isMutable"`
	TokenStandard        *uint8 `json:"tokenStandard,omitempty"`
}

// TokenView は mint + metadata をまとめて返す DTO です。
// metadata がまだ無い場合は Metadata = nil。
type TokenView struct {
	Mint     MintStateDTO `json:"mint"`
	Metadata *MetadataDTO `json:"metadata,omitempty"`
}
