package domain

// PubkeyDataKind tags where an address is read from.
type PubkeyDataKind uint8

const (
	PubkeyDataKindInstructionData PubkeyDataKind = 1
	PubkeyDataKindAccountData     PubkeyDataKind = 2
)

// PubkeyData locates a 32-byte address inside instruction data (at Offset) or inside
// the data of a previously resolved account (account Index, at Offset).
type PubkeyData struct {
	Kind   PubkeyDataKind
	Index  uint8
	Offset uint8
}

// PackPubkeyData encodes the location into a 32-byte address configuration.
func PackPubkeyData(p PubkeyData) ([32]byte, error) {
	var config [32]byte
	config[0] = byte(p.Kind)
	switch p.Kind {
	case PubkeyDataKindInstructionData:
		config[1] = p.Offset
	case PubkeyDataKindAccountData:
		config[1] = p.Index
		config[2] = p.Offset
	default:
		return config, ErrInvalidPubkeyDataConfig
	}
	return config, nil
}

// UnpackPubkeyData decodes a 32-byte address configuration.
func UnpackPubkeyData(config [32]byte) (PubkeyData, error) {
	switch PubkeyDataKind(config[0]) {
	case PubkeyDataKindInstructionData:
		return PubkeyData{Kind: PubkeyDataKindInstructionData, Offset: config[1]}, nil
	case PubkeyDataKindAccountData:
		return PubkeyData{Kind: PubkeyDataKindAccountData, Index: config[1], Offset: config[2]}, nil
	default:
		return PubkeyData{}, ErrInvalidPubkeyDataConfig
	}
}
