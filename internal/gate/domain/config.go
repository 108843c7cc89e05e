package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Kind names a gating program implementation.
type Kind string

const (
	KindAlwaysAllow   Kind = "always-allow"
	KindAlwaysBlock   Kind = "always-block"
	KindAllowWithDeps Kind = "allow-with-deps"
	KindWebhook       Kind = "webhook"
)

// DefaultBlockCode is the rejection code of always-block gates without an explicit code.
const DefaultBlockCode uint32 = 999999999

// Default gating program identities.
var (
	AlwaysAllowProgramID   = solana.MustPublicKeyFromBase58("Eba1ts11111111111111111111111111111111111112")
	AlwaysBlockProgramID   = solana.MustPublicKeyFromBase58("Eba1ts11111111111111111111111111111111111113")
	AllowWithDepsProgramID = solana.MustPublicKeyFromBase58("Eba1ts11111111111111111111111111111111111114")
)

// GateConfig configures one gating program.
type GateConfig struct {
	Name      string        `yaml:"name"`
	Kind      Kind          `yaml:"kind"`
	ProgramID string        `yaml:"program_id"`
	Code      *uint32       `yaml:"code,omitempty"`
	URL       string        `yaml:"url,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	RetryMax  int           `yaml:"retry_max,omitempty"`
}

// RegistryConfig is the gating program registry file.
type RegistryConfig struct {
	Gates []GateConfig `yaml:"gates"`
}

// DefaultRegistryConfig returns the built-in gating programs.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Gates: []GateConfig{
			{Name: "always-allow", Kind: KindAlwaysAllow, ProgramID: AlwaysAllowProgramID.String()},
			{Name: "always-block", Kind: KindAlwaysBlock, ProgramID: AlwaysBlockProgramID.String()},
			{Name: "allow-with-deps", Kind: KindAllowWithDeps, ProgramID: AllowWithDepsProgramID.String()},
		},
	}
}
