package usecase

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	"github.com/allisson/tokenacl/internal/metrics"
)

const metricsDomain = "acl"

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := metrics.StatusFromError(err)
	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// configUseCaseWithMetrics decorates ConfigUseCase with metrics instrumentation.
type configUseCaseWithMetrics struct {
	next    ConfigUseCase
	metrics metrics.BusinessMetrics
}

// NewConfigUseCaseWithMetrics wraps a ConfigUseCase with metrics recording.
func NewConfigUseCaseWithMetrics(useCase ConfigUseCase, m metrics.BusinessMetrics) ConfigUseCase {
	return &configUseCaseWithMetrics{next: useCase, metrics: m}
}

// Create records metrics for config creation.
func (c *configUseCaseWithMetrics) Create(ctx context.Context, in CreateConfigInput) (*aclDomain.MintConfig, error) {
	start := time.Now()
	config, err := c.next.Create(ctx, in)
	record(ctx, c.metrics, "config_create", start, err)
	return config, err
}

// Delete records metrics for config deletion.
func (c *configUseCaseWithMetrics) Delete(
	ctx context.Context,
	in DeleteConfigInput,
) (*aclDomain.DeleteConfigResult, error) {
	start := time.Now()
	result, err := c.next.Delete(ctx, in)
	record(ctx, c.metrics, "config_delete", start, err)
	return result, err
}

// SetAuthority records metrics for authority changes.
func (c *configUseCaseWithMetrics) SetAuthority(
	ctx context.Context,
	in UpdateConfigInput,
	newAuthority solana.PublicKey,
) (*aclDomain.MintConfig, error) {
	start := time.Now()
	config, err := c.next.SetAuthority(ctx, in, newAuthority)
	record(ctx, c.metrics, "config_set_authority", start, err)
	return config, err
}

// SetGatingProgram records metrics for gating program changes.
func (c *configUseCaseWithMetrics) SetGatingProgram(
	ctx context.Context,
	in UpdateConfigInput,
	gatingProgram solana.PublicKey,
) (*aclDomain.MintConfig, error) {
	start := time.Now()
	config, err := c.next.SetGatingProgram(ctx, in, gatingProgram)
	record(ctx, c.metrics, "config_set_gating_program", start, err)
	return config, err
}

// TogglePermissionlessInstructions records metrics for flag changes.
func (c *configUseCaseWithMetrics) TogglePermissionlessInstructions(
	ctx context.Context,
	in UpdateConfigInput,
	enableFreeze, enableThaw bool,
) (*aclDomain.MintConfig, error) {
	start := time.Now()
	config, err := c.next.TogglePermissionlessInstructions(ctx, in, enableFreeze, enableThaw)
	record(ctx, c.metrics, "config_toggle", start, err)
	return config, err
}

// Get records metrics for config lookups.
func (c *configUseCaseWithMetrics) Get(ctx context.Context, mint solana.PublicKey) (*aclDomain.MintConfig, error) {
	start := time.Now()
	config, err := c.next.Get(ctx, mint)
	record(ctx, c.metrics, "config_get", start, err)
	return config, err
}

// freezeUseCaseWithMetrics decorates FreezeUseCase with metrics instrumentation.
type freezeUseCaseWithMetrics struct {
	next    FreezeUseCase
	metrics metrics.BusinessMetrics
}

// NewFreezeUseCaseWithMetrics wraps a FreezeUseCase with metrics recording.
func NewFreezeUseCaseWithMetrics(useCase FreezeUseCase, m metrics.BusinessMetrics) FreezeUseCase {
	return &freezeUseCaseWithMetrics{next: useCase, metrics: m}
}

// Freeze records metrics for authority-signed freezes.
func (f *freezeUseCaseWithMetrics) Freeze(ctx context.Context, in FreezeInput) error {
	start := time.Now()
	err := f.next.Freeze(ctx, in)
	record(ctx, f.metrics, "freeze", start, err)
	return err
}

// Thaw records metrics for authority-signed thaws.
func (f *freezeUseCaseWithMetrics) Thaw(ctx context.Context, in FreezeInput) error {
	start := time.Now()
	err := f.next.Thaw(ctx, in)
	record(ctx, f.metrics, "thaw", start, err)
	return err
}

// permissionlessUseCaseWithMetrics decorates PermissionlessUseCase with metrics
// instrumentation.
type permissionlessUseCaseWithMetrics struct {
	next    PermissionlessUseCase
	metrics metrics.BusinessMetrics
}

// NewPermissionlessUseCaseWithMetrics wraps a PermissionlessUseCase with metrics recording.
func NewPermissionlessUseCaseWithMetrics(useCase PermissionlessUseCase, m metrics.BusinessMetrics) PermissionlessUseCase {
	return &permissionlessUseCaseWithMetrics{next: useCase, metrics: m}
}

// FreezePermissionless records metrics for permissionless freezes.
func (p *permissionlessUseCaseWithMetrics) FreezePermissionless(ctx context.Context, in PermissionlessInput) error {
	start := time.Now()
	err := p.next.FreezePermissionless(ctx, in)
	record(ctx, p.metrics, "freeze_permissionless", start, err)
	return err
}

// ThawPermissionless records metrics for permissionless thaws.
func (p *permissionlessUseCaseWithMetrics) ThawPermissionless(ctx context.Context, in PermissionlessInput) error {
	start := time.Now()
	err := p.next.ThawPermissionless(ctx, in)
	record(ctx, p.metrics, "thaw_permissionless", start, err)
	return err
}

// Decision outcomes.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
	DecisionError    = "error"
)

// DecisionOutcome classifies the result of a decision call.
func DecisionOutcome(err error) string {
	switch {
	case err == nil:
		return DecisionApproved
	case apperrors.Is(err, apperrors.ErrRejected):
		return DecisionRejected
	default:
		return DecisionError
	}
}

// gateRegistryWithMetrics decorates GateRegistry so every decision is counted.
type gateRegistryWithMetrics struct {
	next    GateRegistry
	metrics metrics.BusinessMetrics
}

// NewGateRegistryWithMetrics wraps a GateRegistry so the programs it returns record
// their decisions.
func NewGateRegistryWithMetrics(registry GateRegistry, m metrics.BusinessMetrics) GateRegistry {
	return &gateRegistryWithMetrics{next: registry, metrics: m}
}

// Get implements GateRegistry.
func (g *gateRegistryWithMetrics) Get(id solana.PublicKey) (gateDomain.DecisionProgram, error) {
	program, err := g.next.Get(id)
	if err != nil {
		return nil, err
	}
	return &decisionProgramWithMetrics{next: program, metrics: g.metrics}, nil
}

type decisionProgramWithMetrics struct {
	next    gateDomain.DecisionProgram
	metrics metrics.BusinessMetrics
}

func (d *decisionProgramWithMetrics) ProgramID() solana.PublicKey {
	return d.next.ProgramID()
}

func (d *decisionProgramWithMetrics) Decide(ctx context.Context, req *gateDomain.DecisionRequest) error {
	err := d.next.Decide(ctx, req)
	d.metrics.RecordDecision(ctx, d.next.ProgramID().String(), string(req.Operation), DecisionOutcome(err))
	return err
}
