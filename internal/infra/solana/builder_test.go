package solana

import (
	"encoding/hex"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "narratives-mint/internal/domain/mint"
)

var demoRequest = mintdom.CreationRequest{
	Title:    "Demo Token",
	Symbol:   "DEMO",
	URI:      "https://x/demo.json",
	Decimals: 6,
}

func TestNewCreateTokenInstruction(t *testing.T) {
	programID := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	authority := types.NewAccount().PublicKey
	payer := types.NewAccount().PublicKey

	ix, err := NewCreateTokenInstruction(programID, CreateTokenAccounts{
		Mint:          mint,
		MintAuthority: authority,
		Payer:         payer,
	}, demoRequest)
	require.NoError(t, err)

	metadata, err := MetadataAddress(mint)
	require.NoError(t, err)

	assert.Equal(t, programID, ix.ProgramID)
	require.Len(t, ix.Accounts, mintdom.AccountCount)

	set, err := mintdom.ParseAccountSet(ix.Accounts)
	require.NoError(t, err)
	assert.Equal(t, mint, set.Mint.PubKey)
	assert.Equal(t, authority, set.MintAuthority.PubKey)
	assert.True(t, set.MintAuthority.IsSigner)
	assert.False(t, set.MintAuthority.IsWritable)
	assert.Equal(t, metadata, set.Metadata.PubKey)
	assert.Equal(t, payer, set.Payer.PubKey)

	req, err := mintdom.DecodeCreationRequest(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, demoRequest, req)
}

func TestNewCreateTokenInstructionKeepsExplicitMetadata(t *testing.T) {
	explicit := types.NewAccount().PublicKey
	ix, err := NewCreateTokenInstruction(common.SystemProgramID, CreateTokenAccounts{
		Mint:          types.NewAccount().PublicKey,
		MintAuthority: types.NewAccount().PublicKey,
		Metadata:      explicit,
		Payer:         types.NewAccount().PublicKey,
	}, demoRequest)
	require.NoError(t, err)
	assert.Equal(t, explicit, ix.Accounts[2].PubKey)
}

func TestCreateTokenInstructionDataGolden(t *testing.T) {
	data, err := demoRequest.Encode()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "create_token_demo", []byte(hex.EncodeToString(data)+"\n"))
}
