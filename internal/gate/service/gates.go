// Package service implements the built-in gating programs, the webhook gate and the
// registry the engine resolves gating program ids through.
package service

import (
	"bytes"
	"context"

	"github.com/gagliardetto/solana-go"

	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// checkDiscriminator rejects calls whose entry point does not match the operation.
func checkDiscriminator(req *gateDomain.DecisionRequest) error {
	discriminator := req.Operation.Discriminator()
	if !bytes.Equal(req.Data, discriminator[:]) {
		return ledgerDomain.ErrInvalidInstructionData
	}
	return nil
}

// AlwaysAllow approves every request.
type AlwaysAllow struct {
	programID solana.PublicKey
}

// NewAlwaysAllow creates an AlwaysAllow gate.
func NewAlwaysAllow(programID solana.PublicKey) *AlwaysAllow {
	return &AlwaysAllow{programID: programID}
}

// ProgramID implements gateDomain.DecisionProgram.
func (g *AlwaysAllow) ProgramID() solana.PublicKey {
	return g.programID
}

// Decide implements gateDomain.DecisionProgram.
func (g *AlwaysAllow) Decide(_ context.Context, req *gateDomain.DecisionRequest) error {
	return checkDiscriminator(req)
}

// AlwaysBlock denies every request with a fixed custom code.
type AlwaysBlock struct {
	programID solana.PublicKey
	code      uint32
}

// NewAlwaysBlock creates an AlwaysBlock gate rejecting with code.
func NewAlwaysBlock(programID solana.PublicKey, code uint32) *AlwaysBlock {
	return &AlwaysBlock{programID: programID, code: code}
}

// ProgramID implements gateDomain.DecisionProgram.
func (g *AlwaysBlock) ProgramID() solana.PublicKey {
	return g.programID
}

// Decide implements gateDomain.DecisionProgram.
func (g *AlwaysBlock) Decide(_ context.Context, req *gateDomain.DecisionRequest) error {
	if err := checkDiscriminator(req); err != nil {
		return err
	}
	return ledgerDomain.CustomError(g.code)
}
