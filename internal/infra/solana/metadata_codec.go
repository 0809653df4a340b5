// internal/infra/solana/metadata_codec.go
package solana

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/near/borsh-go"

	mintdom "narratives-mint/internal/domain/mint"
)

// CreateMetadataAccountV3 の命令番号（token-metadata プログラム）
const InstructionCreateMetadataAccountV3 uint8 = 33

var ErrUnknownMetadataInstruction = errors.New("metadata: unknown instruction")

// ============================================================
// borsh 表現（token-metadata プログラムと同じ並び）
// ============================================================

type borshCreator struct {
	Address  common.PublicKey
	Verified bool
	Share    uint8
}

type borshCollection struct {
	Verified bool
	Key      common.PublicKey
}

type borshUses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type borshCollectionDetailsV1 struct {
	Size uint64
}

type borshCollectionDetails struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   borshCollectionDetailsV1
}

type borshDataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]borshCreator
	Collection           *borshCollection
	Uses                 *borshUses
}

type borshCreateMetadataAccountV3Args struct {
	Data              borshDataV2
	IsMutable         bool
	CollectionDetails *borshCollectionDetails
}

type borshData struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]borshCreator
}

type borshMetadata struct {
	Key                 uint8
	UpdateAuthority     common.PublicKey
	Mint                common.PublicKey
	Data                borshData
	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *uint8
	Collection          *borshCollection
	Uses                *borshUses
	CollectionDetails   *borshCollectionDetails
}

// ============================================================
// CreateMetadataAccountV3 引数
// ============================================================

// CreateMetadataArgs は CreateMetadataAccountV3 のデコード結果です。
type CreateMetadataArgs struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []mintdom.Creator
	Collection           *mintdom.Collection
	Uses                 *mintdom.Uses
	IsMutable            bool
	CollectionSize       *uint64
}

// DecodeCreateMetadataArgs は命令データ（先頭 1 バイトが命令番号）をデコードします。
func DecodeCreateMetadataArgs(data []byte) (CreateMetadataArgs, error) {
	if len(data) == 0 {
		return CreateMetadataArgs{}, fmt.Errorf("%w: empty data", ErrUnknownMetadataInstruction)
	}
	if data[0] != InstructionCreateMetadataAccountV3 {
		return CreateMetadataArgs{}, fmt.Errorf("%w: %d", ErrUnknownMetadataInstruction, data[0])
	}

	var raw borshCreateMetadataAccountV3Args
	if err := borsh.Deserialize(&raw, data[1:]); err != nil {
		return CreateMetadataArgs{}, fmt.Errorf("metadata: decode args: %w", err)
	}

	out := CreateMetadataArgs{
		Name:                 raw.Data.Name,
		Symbol:               raw.Data.Symbol,
		URI:                  raw.Data.Uri,
		SellerFeeBasisPoints: raw.Data.SellerFeeBasisPoints,
		Creators:             fromBorshCreators(raw.Data.Creators),
		IsMutable:            raw.IsMutable,
	}
	if c := raw.Data.Collection; c != nil {
		out.Collection = &mintdom.Collection{Verified: c.Verified, Key: c.Key}
	}
	if u := raw.Data.Uses; u != nil {
		out.Uses = &mintdom.Uses{UseMethod: u.UseMethod, Remaining: u.Remaining, Total: u.Total}
	}
	if d := raw.CollectionDetails; d != nil {
		size := d.V1.Size
		out.CollectionSize = &size
	}
	return out, nil
}

// ============================================================
// Metadata レコード
// ============================================================

// EncodeMetadataRecord は metadata アカウントのデータを作ります。
func EncodeMetadataRecord(r mintdom.MetadataRecord) ([]byte, error) {
	raw := borshMetadata{
		Key:             r.Key,
		UpdateAuthority: r.UpdateAuthority,
		Mint:            r.Mint,
		Data: borshData{
			Name:                 r.Name,
			Symbol:               r.Symbol,
			Uri:                  r.URI,
			SellerFeeBasisPoints: r.SellerFeeBasisPoints,
			Creators:             toBorshCreators(r.Creators),
		},
		PrimarySaleHappened: r.PrimarySaleHappened,
		IsMutable:           r.IsMutable,
		EditionNonce:        r.EditionNonce,
	}
	if r.TokenStandard != nil {
		ts := uint8(*r.TokenStandard)
		raw.TokenStandard = &ts
	}
	if c := r.Collection; c != nil {
		raw.Collection = &borshCollection{Verified: c.Verified, Key: c.Key}
	}
	if u := r.Uses; u != nil {
		raw.Uses = &borshUses{UseMethod: u.UseMethod, Remaining: u.Remaining, Total: u.Total}
	}
	if r.CollectionSize != nil {
		raw.CollectionDetails = &borshCollectionDetails{V1: borshCollectionDetailsV1{Size: *r.CollectionSize}}
	}

	b, err := borsh.Serialize(raw)
	if err != nil {
		return nil, fmt.Errorf("metadata: encode record: %w", err)
	}
	return b, nil
}

// DecodeMetadataRecord は metadata アカウントのデータを読みます。
func DecodeMetadataRecord(data []byte) (mintdom.MetadataRecord, error) {
	var raw borshMetadata
	if err := borsh.Deserialize(&raw, data); err != nil {
		return mintdom.MetadataRecord{}, fmt.Errorf("metadata: decode record: %w", err)
	}
	if raw.Key != mintdom.MetadataKeyV1 {
		return mintdom.MetadataRecord{}, fmt.Errorf("metadata: unexpected key %d", raw.Key)
	}

	out := mintdom.MetadataRecord{
		Key:                  raw.Key,
		UpdateAuthority:      raw.UpdateAuthority,
		Mint:                 raw.Mint,
		Name:                 raw.Data.Name,
		Symbol:               raw.Data.Symbol,
		URI:                  raw.Data.Uri,
		SellerFeeBasisPoints: raw.Data.SellerFeeBasisPoints,
		Creators:             fromBorshCreators(raw.Data.Creators),
		PrimarySaleHappened:  raw.PrimarySaleHappened,
		IsMutable:            raw.IsMutable,
		EditionNonce:         raw.EditionNonce,
	}
	if raw.TokenStandard != nil {
		ts := mintdom.TokenStandard(*raw.TokenStandard)
		out.TokenStandard = &ts
	}
	if c := raw.Collection; c != nil {
		out.Collection = &mintdom.Collection{Verified: c.Verified, Key: c.Key}
	}
	if u := raw.Uses; u != nil {
		out.Uses = &mintdom.Uses{UseMethod: u.UseMethod, Remaining: u.Remaining, Total: u.Total}
	}
	if d := raw.CollectionDetails; d != nil {
		size := d.V1.Size
		out.CollectionSize = &size
	}
	return out, nil
}

func toBorshCreators(in []mintdom.Creator) *[]borshCreator {
	if in == nil {
		return nil
	}
	out := make([]borshCreator, 0, len(in))
	for _, c := range in {
		out = append(out, borshCreator{Address: c.Address, Verified: c.Verified, Share: c.Share})
	}
	return &out
}

func fromBorshCreators(in *[]borshCreator) []mintdom.Creator {
	if in == nil {
		return nil
	}
	out := make([]mintdom.Creator, 0, len(*in))
	for _, c := range *in {
		out = append(out, mintdom.Creator{Address: c.Address, Verified: c.Verified, Share: c.Share})
	}
	return out
}
