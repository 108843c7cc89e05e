package service

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/gagliardetto/solana-go"
	validation "github.com/jellydator/validation"
	"gopkg.in/yaml.v3"

	apperrors "github.com/allisson/tokenacl/internal/errors"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	customValidation "github.com/allisson/tokenacl/internal/validation"
)

// SetupProgram is a gating program that also runs as a ledger program, typically to
// publish its descriptor lists.
type SetupProgram interface {
	ProgramID() solana.PublicKey
	Process(ctx context.Context, ix *ledgerDomain.InstructionContext) error
}

// Registry resolves gating program ids to decision programs.
type Registry struct {
	programs map[solana.PublicKey]gateDomain.DecisionProgram
	order    []solana.PublicKey
}

// NewRegistry creates a Registry. Two programs sharing an id yield ErrDuplicateGate.
func NewRegistry(programs ...gateDomain.DecisionProgram) (*Registry, error) {
	r := &Registry{programs: make(map[solana.PublicKey]gateDomain.DecisionProgram, len(programs))}
	for _, p := range programs {
		id := p.ProgramID()
		if _, ok := r.programs[id]; ok {
			return nil, apperrors.Wrapf(gateDomain.ErrDuplicateGate, "program %s", id)
		}
		r.programs[id] = p
		r.order = append(r.order, id)
	}
	return r, nil
}

// Get returns the decision program registered under id.
func (r *Registry) Get(id solana.PublicKey) (gateDomain.DecisionProgram, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, ledgerDomain.ErrUnsupportedProgramID
	}
	return p, nil
}

// Programs returns the registered programs in registration order.
func (r *Registry) Programs() []gateDomain.DecisionProgram {
	programs := make([]gateDomain.DecisionProgram, 0, len(r.order))
	for _, id := range r.order {
		programs = append(programs, r.programs[id])
	}
	return programs
}

// SetupPrograms returns the registered programs that also run as ledger programs.
func (r *Registry) SetupPrograms() []SetupProgram {
	var setup []SetupProgram
	for _, p := range r.Programs() {
		if s, ok := p.(SetupProgram); ok {
			setup = append(setup, s)
		}
	}
	return setup
}

// LoadRegistryConfig reads a YAML registry file. An empty path selects the built-in
// gating programs.
func LoadRegistryConfig(path string) (gateDomain.RegistryConfig, error) {
	if path == "" {
		return gateDomain.DefaultRegistryConfig(), nil
	}

	content, err := os.ReadFile(path) //nolint:gosec // operator-provided configuration path
	if err != nil {
		return gateDomain.RegistryConfig{}, apperrors.Wrap(err, "failed to read gate registry file")
	}

	var cfg gateDomain.RegistryConfig
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return gateDomain.RegistryConfig{}, apperrors.Wrapf(gateDomain.ErrInvalidGateConfig, "%v", err)
	}
	return cfg, nil
}

// ValidateGateConfig checks a single registry entry.
func ValidateGateConfig(cfg gateDomain.GateConfig) error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&cfg.Kind, validation.Required, validation.In(
			gateDomain.KindAlwaysAllow,
			gateDomain.KindAlwaysBlock,
			gateDomain.KindAllowWithDeps,
			gateDomain.KindWebhook,
		)),
		validation.Field(&cfg.ProgramID, validation.Required, customValidation.PublicKey),
		validation.Field(&cfg.URL, validation.When(cfg.Kind == gateDomain.KindWebhook, validation.Required)),
		validation.Field(&cfg.Timeout, validation.Min(0)),
		validation.Field(&cfg.RetryMax, validation.Min(0)),
	)
	if err != nil {
		return apperrors.Wrapf(gateDomain.ErrInvalidGateConfig, "gate %q: %v", cfg.Name, err)
	}
	return nil
}

// Dependencies are the collaborators gating programs may need.
type Dependencies struct {
	// EngineProgramID owns the flag accounts gates inspect.
	EngineProgramID solana.PublicKey
	Accounts        AccountRepository
	System          SystemProgram
	Logger          *slog.Logger
}

// BuildRegistry validates cfg and instantiates every configured gate.
func BuildRegistry(cfg gateDomain.RegistryConfig, deps Dependencies) (*Registry, error) {
	programs := make([]gateDomain.DecisionProgram, 0, len(cfg.Gates))
	for _, gate := range cfg.Gates {
		if err := ValidateGateConfig(gate); err != nil {
			return nil, err
		}
		programID := solana.MustPublicKeyFromBase58(gate.ProgramID)

		switch gate.Kind {
		case gateDomain.KindAlwaysAllow:
			programs = append(programs, NewAlwaysAllow(programID))
		case gateDomain.KindAlwaysBlock:
			code := gateDomain.DefaultBlockCode
			if gate.Code != nil {
				code = *gate.Code
			}
			programs = append(programs, NewAlwaysBlock(programID, code))
		case gateDomain.KindAllowWithDeps:
			programs = append(programs, NewAllowWithDeps(programID, deps.EngineProgramID, deps.Accounts, deps.System, deps.Logger))
		case gateDomain.KindWebhook:
			programs = append(programs, NewWebhook(programID, gate.URL, gate.Timeout, gate.RetryMax, deps.Logger))
		}

		deps.Logger.Debug("gate registered",
			slog.String("name", gate.Name),
			slog.String("kind", string(gate.Kind)),
			slog.String("program_id", gate.ProgramID),
		)
	}
	return NewRegistry(programs...)
}
