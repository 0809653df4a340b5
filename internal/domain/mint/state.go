// internal/domain/mint/state.go
package mint

import "github.com/blocto/solana-go-sdk/common"

// MintSize は SPL token の mint レイアウトのバイト長です。
const MintSize uint64 = 82

// metadata プログラム側の上限（バイト長）
const (
	MaxNameLength           = 32
	MaxSymbolLength         = 10
	MaxURILength            = 200
	MaxSellerFeeBasisPoints = 10000
	MaxCreators             = 5
)

// MetadataKeyV1 は metadata レコード先頭の種別キーです。
const MetadataKeyV1 uint8 = 4

// TokenStandard は metadata レコードに記録されるトークン種別です。
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

// TokenStandardFor は master edition を持たない mint の種別を decimals から決めます。
func TokenStandardFor(decimals uint8) TokenStandard {
	if decimals == 0 {
		return TokenStandardFungibleAsset
	}
	return TokenStandardFungible
}

// MintState は token プログラムが書き込んだ mint レコードです。
type MintState struct {
	MintAuthority   *common.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *common.PublicKey
}

// Creator は metadata の creators 要素です。
type Creator struct {
	Address  common.PublicKey
	Verified bool
	Share    uint8
}

// Collection は metadata の collection リンクです。
type Collection struct {
	Verified bool
	Key      common.PublicKey
}

// Uses は metadata の special-uses 記述です。
type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// MetadataRecord は metadata プログラムが作成したレコードです。
type MetadataRecord struct {
	Key                  uint8
	UpdateAuthority      common.PublicKey
	Mint                 common.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	Uses                 *Uses
	CollectionSize       *uint64
}
