package domain

// SeedKind tags a seed in a derived-address configuration.
type SeedKind uint8

const (
	seedTerminator          SeedKind = 0
	SeedKindLiteral         SeedKind = 1
	SeedKindInstructionData SeedKind = 2
	SeedKindAccountKey      SeedKind = 3
	SeedKindAccountData     SeedKind = 4
)

// Seed is one component of a derived address. Only the fields of its Kind are used:
// Bytes for literals, Index and Length for instruction data, Index for account keys and
// Index, Offset and Length for account data.
type Seed struct {
	Kind   SeedKind
	Bytes  []byte
	Index  uint8
	Offset uint8
	Length uint8
}

// LiteralSeed is a fixed byte string.
func LiteralSeed(b []byte) Seed {
	return Seed{Kind: SeedKindLiteral, Bytes: b}
}

// InstructionDataSeed takes length bytes of the instruction data starting at index.
func InstructionDataSeed(index, length uint8) Seed {
	return Seed{Kind: SeedKindInstructionData, Index: index, Length: length}
}

// AccountKeySeed takes the address of a previously resolved account.
func AccountKeySeed(index uint8) Seed {
	return Seed{Kind: SeedKindAccountKey, Index: index}
}

// AccountDataSeed takes length bytes at offset from the data of a previously resolved
// account.
func AccountDataSeed(index, offset, length uint8) Seed {
	return Seed{Kind: SeedKindAccountData, Index: index, Offset: offset, Length: length}
}

func (s Seed) packedLen() int {
	switch s.Kind {
	case SeedKindLiteral:
		return 2 + len(s.Bytes)
	case SeedKindInstructionData:
		return 3
	case SeedKindAccountKey:
		return 2
	case SeedKindAccountData:
		return 4
	default:
		return 0
	}
}

// PackSeeds encodes seeds into a 32-byte address configuration. Unused trailing bytes
// stay zero, which terminates the list.
func PackSeeds(seeds []Seed) ([32]byte, error) {
	var config [32]byte
	offset := 0
	for _, seed := range seeds {
		n := seed.packedLen()
		if n == 0 || (seed.Kind == SeedKindLiteral && len(seed.Bytes) > 255) {
			return config, ErrInvalidSeedConfig
		}
		if offset+n > len(config) {
			return config, ErrSeedConfigsTooLarge
		}

		config[offset] = byte(seed.Kind)
		switch seed.Kind {
		case SeedKindLiteral:
			config[offset+1] = byte(len(seed.Bytes))
			copy(config[offset+2:], seed.Bytes)
		case SeedKindInstructionData:
			config[offset+1] = seed.Index
			config[offset+2] = seed.Length
		case SeedKindAccountKey:
			config[offset+1] = seed.Index
		case SeedKindAccountData:
			config[offset+1] = seed.Index
			config[offset+2] = seed.Offset
			config[offset+3] = seed.Length
		}
		offset += n
	}
	return config, nil
}

// UnpackSeeds decodes a 32-byte address configuration.
func UnpackSeeds(config [32]byte) ([]Seed, error) {
	var seeds []Seed
	offset := 0
	for offset < len(config) {
		rest := config[offset+1:]
		var seed Seed
		switch SeedKind(config[offset]) {
		case seedTerminator:
			return seeds, nil
		case SeedKindLiteral:
			if len(rest) < 1 || len(rest)-1 < int(rest[0]) {
				return nil, ErrNotEnoughBytesForSeed
			}
			length := int(rest[0])
			seed = LiteralSeed(append([]byte(nil), rest[1:1+length]...))
		case SeedKindInstructionData:
			if len(rest) < 2 {
				return nil, ErrNotEnoughBytesForSeed
			}
			seed = InstructionDataSeed(rest[0], rest[1])
		case SeedKindAccountKey:
			if len(rest) < 1 {
				return nil, ErrNotEnoughBytesForSeed
			}
			seed = AccountKeySeed(rest[0])
		case SeedKindAccountData:
			if len(rest) < 3 {
				return nil, ErrNotEnoughBytesForSeed
			}
			seed = AccountDataSeed(rest[0], rest[1], rest[2])
		default:
			return nil, ErrInvalidSeedConfig
		}
		seeds = append(seeds, seed)
		offset += seed.packedLen()
	}
	return seeds, nil
}
