// Package service expands extra-account descriptor lists into concrete account lists.
//
// Clients building an instruction and the engine invoking a gating program run the same
// Resolver, so both produce the same ordered list for the same account snapshot.
package service

import (
	"context"

	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	resolutionDomain "github.com/allisson/tokenacl/internal/resolution/domain"
)

// AccountDataFetcher returns the data stored at an address. found is false when the
// address holds no account.
type AccountDataFetcher interface {
	FetchAccountData(ctx context.Context, address solana.PublicKey) (data []byte, found bool, err error)
}

// AccountDataFetcherFunc adapts a function to AccountDataFetcher.
type AccountDataFetcherFunc func(ctx context.Context, address solana.PublicKey) ([]byte, bool, error)

// FetchAccountData implements AccountDataFetcher.
func (f AccountDataFetcherFunc) FetchAccountData(ctx context.Context, address solana.PublicKey) ([]byte, bool, error) {
	return f(ctx, address)
}

// WithOverrides serves the given data for specific addresses and falls back to fetcher
// for the rest. Clients use it to resolve against accounts that do not exist yet.
func WithOverrides(fetcher AccountDataFetcher, overrides map[solana.PublicKey][]byte) AccountDataFetcher {
	return AccountDataFetcherFunc(func(ctx context.Context, address solana.PublicKey) ([]byte, bool, error) {
		if data, ok := overrides[address]; ok {
			return data, true, nil
		}
		return fetcher.FetchAccountData(ctx, address)
	})
}

// Resolver interprets descriptor lists.
type Resolver struct {
	fetcher AccountDataFetcher
}

// NewResolver creates a Resolver reading account data through fetcher.
func NewResolver(fetcher AccountDataFetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve expands metas in order. previous is the instruction's fixed account list;
// each resolved meta is appended to it before the next one is interpreted, so a meta may
// only reference accounts before its own position. Only the resolved extras are returned.
func (r *Resolver) Resolve(
	ctx context.Context,
	metas []resolutionDomain.ExtraAccountMeta,
	previous []ledgerDomain.AccountMeta,
	instructionData []byte,
	programID solana.PublicKey,
) ([]ledgerDomain.AccountMeta, error) {
	resolved := make([]ledgerDomain.AccountMeta, len(previous), len(previous)+len(metas))
	copy(resolved, previous)

	for _, meta := range metas {
		address, err := r.resolveAddress(ctx, meta, resolved, instructionData, programID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, ledgerDomain.NewAccountMeta(address, meta.IsWritable, meta.IsSigner))
	}
	return resolved[len(previous):], nil
}

func (r *Resolver) resolveAddress(
	ctx context.Context,
	meta resolutionDomain.ExtraAccountMeta,
	resolved []ledgerDomain.AccountMeta,
	instructionData []byte,
	programID solana.PublicKey,
) (solana.PublicKey, error) {
	kind, err := meta.Kind()
	if err != nil {
		return solana.PublicKey{}, err
	}

	switch kind {
	case resolutionDomain.MetaKindLiteral:
		return solana.PublicKey(meta.AddressConfig), nil

	case resolutionDomain.MetaKindPubkeyData:
		location, err := resolutionDomain.UnpackPubkeyData(meta.AddressConfig)
		if err != nil {
			return solana.PublicKey{}, err
		}
		return r.readPubkey(ctx, location, resolved, instructionData)

	default:
		owner := programID
		if index, ok := meta.ProgramIndex(); ok {
			if index >= len(resolved) {
				return solana.PublicKey{}, resolutionDomain.ErrAccountNotFound
			}
			owner = resolved[index].PublicKey
		}
		seeds, err := resolutionDomain.UnpackSeeds(meta.AddressConfig)
		if err != nil {
			return solana.PublicKey{}, err
		}
		values, err := r.seedValues(ctx, seeds, resolved, instructionData)
		if err != nil {
			return solana.PublicKey{}, err
		}
		address, _, err := solana.FindProgramAddress(values, owner)
		if err != nil {
			return solana.PublicKey{}, ledgerDomain.ErrInvalidSeeds
		}
		return address, nil
	}
}

func (r *Resolver) readPubkey(
	ctx context.Context,
	location resolutionDomain.PubkeyData,
	resolved []ledgerDomain.AccountMeta,
	instructionData []byte,
) (solana.PublicKey, error) {
	offset := int(location.Offset)
	if location.Kind == resolutionDomain.PubkeyDataKindInstructionData {
		if len(instructionData) < offset+32 {
			return solana.PublicKey{}, resolutionDomain.ErrInstructionDataTooSmall
		}
		return solana.PublicKeyFromBytes(instructionData[offset : offset+32]), nil
	}

	if int(location.Index) >= len(resolved) {
		return solana.PublicKey{}, resolutionDomain.ErrAccountNotFound
	}
	data, found, err := r.fetcher.FetchAccountData(ctx, resolved[location.Index].PublicKey)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !found {
		return solana.PublicKey{}, resolutionDomain.ErrAccountNotFound
	}
	if len(data) < offset+32 {
		return solana.PublicKey{}, resolutionDomain.ErrAccountDataTooSmall
	}
	return solana.PublicKeyFromBytes(data[offset : offset+32]), nil
}

func (r *Resolver) seedValues(
	ctx context.Context,
	seeds []resolutionDomain.Seed,
	resolved []ledgerDomain.AccountMeta,
	instructionData []byte,
) ([][]byte, error) {
	values := make([][]byte, 0, len(seeds))
	for _, seed := range seeds {
		switch seed.Kind {
		case resolutionDomain.SeedKindLiteral:
			values = append(values, seed.Bytes)

		case resolutionDomain.SeedKindInstructionData:
			start, end := int(seed.Index), int(seed.Index)+int(seed.Length)
			if len(instructionData) < end {
				return nil, resolutionDomain.ErrInstructionDataTooSmall
			}
			values = append(values, instructionData[start:end])

		case resolutionDomain.SeedKindAccountKey:
			if int(seed.Index) >= len(resolved) {
				return nil, resolutionDomain.ErrAccountNotFound
			}
			key := resolved[seed.Index].PublicKey
			values = append(values, key[:])

		case resolutionDomain.SeedKindAccountData:
			if int(seed.Index) >= len(resolved) {
				return nil, resolutionDomain.ErrAccountNotFound
			}
			data, found, err := r.fetcher.FetchAccountData(ctx, resolved[seed.Index].PublicKey)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, resolutionDomain.ErrAccountDataNotFound
			}
			start, end := int(seed.Offset), int(seed.Offset)+int(seed.Length)
			if len(data) < end {
				return nil, resolutionDomain.ErrAccountDataTooSmall
			}
			values = append(values, data[start:end])

		default:
			return nil, resolutionDomain.ErrInvalidSeedConfig
		}
	}
	return values, nil
}

// RequireAccounts checks that every resolved account was supplied among available and
// returns the resolved list. A missing account means the caller built the instruction
// from a different snapshot or descriptor list.
func RequireAccounts(resolved, available []ledgerDomain.AccountMeta) ([]ledgerDomain.AccountMeta, error) {
	supplied := make(map[solana.PublicKey]struct{}, len(available))
	for _, meta := range available {
		supplied[meta.PublicKey] = struct{}{}
	}
	for _, meta := range resolved {
		if _, ok := supplied[meta.PublicKey]; !ok {
			return nil, resolutionDomain.ErrIncorrectAccount
		}
	}
	return resolved, nil
}
