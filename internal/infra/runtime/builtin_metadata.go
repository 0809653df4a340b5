// internal/infra/runtime/builtin_metadata.go
package runtime

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"

	mintdom "narratives-mint/internal/domain/mint"
	"narratives-mint/internal/infra/solana"
)

// CreateMetadataAccountV3 のアカウント並び
const (
	metaIdxMetadata = iota
	metaIdxMint
	metaIdxMintAuthority
	metaIdxPayer
	metaIdxUpdateAuthority
	metaIdxSystemProgram
	metaAccountCount
)

// processMetadata は token-metadata プログラムのうち CreateMetadataAccountV3 のみを扱います。
func processMetadata(ic *InvokeContext, metas []types.AccountMeta, data []byte) error {
	args, err := solana.DecodeCreateMetadataArgs(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	ic.Logf("Instruction: Create Metadata Accounts v3")

	if len(metas) < metaAccountCount {
		return fmt.Errorf("%w: create metadata needs %d, got %d", ErrNotEnoughAccountKeys, metaAccountCount, len(metas))
	}
	var (
		metadata        = metas[metaIdxMetadata].PubKey
		mint            = metas[metaIdxMint].PubKey
		mintAuthority   = metas[metaIdxMintAuthority].PubKey
		payer           = metas[metaIdxPayer].PubKey
		updateAuthority = metas[metaIdxUpdateAuthority].PubKey
		systemProgram   = metas[metaIdxSystemProgram].PubKey
	)

	if err := validateMetadataArgs(args); err != nil {
		return err
	}

	pda, bump, err := solana.FindMetadataAddress(mint)
	if err != nil {
		return err
	}
	if metadata != pda {
		return fmt.Errorf("%w: got %s, want %s", ErrInvalidMetadataKey, metadata.ToBase58(), pda.ToBase58())
	}
	if systemProgram != common.SystemProgramID {
		return fmt.Errorf("%w: system program %s", ErrIncorrectProgramID, systemProgram.ToBase58())
	}

	mintAcc, err := ic.Get(mint)
	if err != nil {
		return err
	}
	if mintAcc.Owner != common.TokenProgramID {
		return fmt.Errorf("%w: mint %s is owned by %s", ErrIncorrectProgramID, mint.ToBase58(), mintAcc.Owner.ToBase58())
	}
	if uint64(len(mintAcc.Data)) != mintdom.MintSize {
		return fmt.Errorf("%w: mint %s", ErrUninitializedMint, mint.ToBase58())
	}
	state, err := solana.DecodeMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	if !state.IsInitialized {
		return fmt.Errorf("%w: mint %s", ErrUninitializedMint, mint.ToBase58())
	}
	if state.MintAuthority == nil || *state.MintAuthority != mintAuthority {
		return fmt.Errorf("%w: %s", ErrInvalidMintAuthority, mintAuthority.ToBase58())
	}
	if !ic.IsSigner(mintAuthority) {
		return fmt.Errorf("%w: mint authority %s", ErrMissingRequiredSignature, mintAuthority.ToBase58())
	}
	if !ic.IsSigner(payer) {
		return fmt.Errorf("%w: payer %s", ErrMissingRequiredSignature, payer.ToBase58())
	}

	standard := mintdom.TokenStandardFor(state.Decimals)
	record := mintdom.MetadataRecord{
		Key:                  mintdom.MetadataKeyV1,
		UpdateAuthority:      updateAuthority,
		Mint:                 mint,
		Name:                 args.Name,
		Symbol:               args.Symbol,
		URI:                  args.URI,
		SellerFeeBasisPoints: args.SellerFeeBasisPoints,
		Creators:             args.Creators,
		IsMutable:            args.IsMutable,
		TokenStandard:        &standard,
		Collection:           args.Collection,
		Uses:                 args.Uses,
		CollectionSize:       args.CollectionSize,
	}
	recordData, err := solana.EncodeMetadataRecord(record)
	if err != nil {
		return err
	}

	lamports, err := ic.MinimumBalance(uint64(len(recordData)))
	if err != nil {
		return err
	}
	seeds := append(solana.MetadataSeeds(mint), []byte{bump})
	if err := ic.InvokeSigned(system.CreateAccount(system.CreateAccountParam{
		From:     payer,
		New:      metadata,
		Owner:    ic.ProgramID(),
		Lamports: lamports,
		Space:    uint64(len(recordData)),
	}), [][][]byte{seeds}); err != nil {
		return err
	}

	acc, err := ic.Get(metadata)
	if err != nil {
		return err
	}
	acc.Data = recordData
	return ic.Put(metadata, acc)
}

func validateMetadataArgs(args solana.CreateMetadataArgs) error {
	switch {
	case len(args.Name) > mintdom.MaxNameLength:
		return fmt.Errorf("%w: name is %d bytes, max %d", ErrMetadataFieldTooLong, len(args.Name), mintdom.MaxNameLength)
	case len(args.Symbol) > mintdom.MaxSymbolLength:
		return fmt.Errorf("%w: symbol is %d bytes, max %d", ErrMetadataFieldTooLong, len(args.Symbol), mintdom.MaxSymbolLength)
	case len(args.URI) > mintdom.MaxURILength:
		return fmt.Errorf("%w: uri is %d bytes, max %d", ErrMetadataFieldTooLong, len(args.URI), mintdom.MaxURILength)
	case args.SellerFeeBasisPoints > mintdom.MaxSellerFeeBasisPoints:
		return fmt.Errorf("%w: %d", ErrInvalidBasisPoints, args.SellerFeeBasisPoints)
	case len(args.Creators) > mintdom.MaxCreators:
		return fmt.Errorf("%w: %d creators, max %d", ErrInvalidCreators, len(args.Creators), mintdom.MaxCreators)
	case args.Collection != nil && args.Collection.Verified:
		return ErrVerifiedCollection
	}

	if len(args.Creators) > 0 {
		total := 0
		seen := make(map[common.PublicKey]struct{}, len(args.Creators))
		for _, c := range args.Creators {
			if _, dup := seen[c.Address]; dup {
				return fmt.Errorf("%w: duplicate creator %s", ErrInvalidCreators, c.Address.ToBase58())
			}
			seen[c.Address] = struct{}{}
			total += int(c.Share)
		}
		if total != 100 {
			return fmt.Errorf("%w: shares sum to %d", ErrInvalidCreators, total)
		}
	}
	return nil
}
