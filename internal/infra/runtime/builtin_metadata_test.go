package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "narratives-mint/internal/domain/mint"
	"narratives-mint/internal/infra/solana"
)

type metadataFixture struct {
	rt        *Runtime
	payer     types.Account
	mint      types.Account
	authority types.Account
	metadata  common.PublicKey
}

func newMetadataFixture(t *testing.T, decimals uint8) *metadataFixture {
	t.Helper()
	rt := newTestRuntime(t)
	f := &metadataFixture{
		rt:        rt,
		payer:     fundedAccount(t, rt),
		mint:      types.NewAccount(),
		authority: types.NewAccount(),
	}
	var err error
	f.metadata, err = solana.MetadataAddress(f.mint.PublicKey)
	require.NoError(t, err)

	_, err = rt.Execute(context.Background(), Transaction{
		Instructions: createMintIxs(f.payer.PublicKey, f.mint.PublicKey, f.authority.PublicKey, 1461600, decimals),
		Signers:      []common.PublicKey{f.payer.PublicKey, f.mint.PublicKey},
	})
	require.NoError(t, err)
	return f
}

func (f *metadataFixture) ix(metadata common.PublicKey, data token_metadata.DataV2) types.Instruction {
	return token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                metadata,
		Mint:                    f.mint.PublicKey,
		MintAuthority:           f.authority.PublicKey,
		Payer:                   f.payer.PublicKey,
		UpdateAuthority:         f.authority.PublicKey,
		UpdateAuthorityIsSigner: true,
		IsMutable:               true,
		Data:                    data,
	})
}

func (f *metadataFixture) run(ix types.Instruction) error {
	_, err := f.rt.Execute(context.Background(), Transaction{
		Instructions: []types.Instruction{ix},
		Signers:      []common.PublicKey{f.payer.PublicKey, f.authority.PublicKey},
	})
	return err
}

func demoData() token_metadata.DataV2 {
	return token_metadata.DataV2{
		Name:   "Demo Token",
		Symbol: "DEMO",
		Uri:    "https://x/demo.json",
	}
}

func TestCreateMetadataAccount(t *testing.T) {
	f := newMetadataFixture(t, 6)
	before := account(t, f.rt, f.payer.PublicKey).Lamports

	require.NoError(t, f.run(f.ix(f.metadata, demoData())))

	acc := account(t, f.rt, f.metadata)
	assert.Equal(t, common.MetaplexTokenMetaProgramID, acc.Owner)

	need, err := DefaultRent().MinimumBalance(uint64(len(acc.Data)))
	require.NoError(t, err)
	assert.Equal(t, need, acc.Lamports)
	assert.Equal(t, before-need, account(t, f.rt, f.payer.PublicKey).Lamports)

	rec, err := solana.DecodeMetadataRecord(acc.Data)
	require.NoError(t, err)
	assert.Equal(t, mintdom.MetadataKeyV1, rec.Key)
	assert.Equal(t, f.mint.PublicKey, rec.Mint)
	assert.Equal(t, f.authority.PublicKey, rec.UpdateAuthority)
	assert.Equal(t, "Demo Token", rec.Name)
	assert.Equal(t, "DEMO", rec.Symbol)
	assert.Equal(t, "https://x/demo.json", rec.URI)
	assert.True(t, rec.IsMutable)
	assert.Nil(t, rec.EditionNonce)
	require.NotNil(t, rec.TokenStandard)
	assert.Equal(t, mintdom.TokenStandardFungible, *rec.TokenStandard)
}

func TestCreateMetadataAccountZeroDecimalsIsFungibleAsset(t *testing.T) {
	f := newMetadataFixture(t, 0)
	require.NoError(t, f.run(f.ix(f.metadata, demoData())))

	rec, err := solana.DecodeMetadataRecord(account(t, f.rt, f.metadata).Data)
	require.NoError(t, err)
	require.NotNil(t, rec.TokenStandard)
	assert.Equal(t, mintdom.TokenStandardFungibleAsset, *rec.TokenStandard)
}

func TestCreateMetadataAccountRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *metadataFixture) types.Instruction
		want   error
	}{
		{
			name: "address not derived from mint",
			mutate: func(f *metadataFixture) types.Instruction {
				return f.ix(types.NewAccount().PublicKey, demoData())
			},
			want: ErrInvalidMetadataKey,
		},
		{
			name: "name too long",
			mutate: func(f *metadataFixture) types.Instruction {
				d := demoData()
				d.Name = strings.Repeat("n", mintdom.MaxNameLength+1)
				return f.ix(f.metadata, d)
			},
			want: ErrMetadataFieldTooLong,
		},
		{
			name: "symbol too long",
			mutate: func(f *metadataFixture) types.Instruction {
				d := demoData()
				d.Symbol = strings.Repeat("S", mintdom.MaxSymbolLength+1)
				return f.ix(f.metadata, d)
			},
			want: ErrMetadataFieldTooLong,
		},
		{
			name: "uri too long",
			mutate: func(f *metadataFixture) types.Instruction {
				d := demoData()
				d.Uri = strings.Repeat("u", mintdom.MaxURILength+1)
				return f.ix(f.metadata, d)
			},
			want: ErrMetadataFieldTooLong,
		},
		{
			name: "fee out of range",
			mutate: func(f *metadataFixture) types.Instruction {
				d := demoData()
				d.SellerFeeBasisPoints = mintdom.MaxSellerFeeBasisPoints + 1
				return f.ix(f.metadata, d)
			},
			want: ErrInvalidBasisPoints,
		},
		{
			name: "creator shares",
			mutate: func(f *metadataFixture) types.Instruction {
				d := demoData()
				d.Creators = &[]token_metadata.Creator{{Address: f.authority.PublicKey, Share: 50}}
				return f.ix(f.metadata, d)
			},
			want: ErrInvalidCreators,
		},
		{
			name: "wrong mint authority",
			mutate: func(f *metadataFixture) types.Instruction {
				ix := f.ix(f.metadata, demoData())
				ix.Accounts[2].PubKey = f.payer.PublicKey
				return ix
			},
			want: ErrInvalidMintAuthority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMetadataFixture(t, 6)
			before := account(t, f.rt, f.payer.PublicKey).Lamports

			err := f.run(tt.mutate(f))
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, account(t, f.rt, f.metadata).IsEmpty())
			assert.Equal(t, before, account(t, f.rt, f.payer.PublicKey).Lamports)
		})
	}
}

func TestCreateMetadataAccountTwice(t *testing.T) {
	f := newMetadataFixture(t, 6)
	require.NoError(t, f.run(f.ix(f.metadata, demoData())))
	assert.ErrorIs(t, f.run(f.ix(f.metadata, demoData())), ErrAccountAlreadyInUse)
}
