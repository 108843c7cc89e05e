package service

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	resolutionDomain "github.com/allisson/tokenacl/internal/resolution/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

// SetupDiscriminator selects the allow-with-deps descriptor list initializer.
var SetupDiscriminator = [8]byte{1, 1, 1, 1, 1, 1, 1, 1}

// allowWithDepsMetaCount is the number of extras both descriptor lists publish.
const allowWithDepsMetaCount = 5

// Decision call positions of the resolved extras.
const (
	depsExtraMetas = iota + 5
	depsAssociatedTokenProgram
	depsTokenProgram
	depsOwnerAgain
	depsAssociatedAccount
	depsExtraMetasAgain
	depsAccountCount
)

// AccountRepository is the ledger storage the allow-with-deps gate writes its lists to.
type AccountRepository interface {
	Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error)
	Update(ctx context.Context, account *ledgerDomain.Account) error
}

// SystemProgram allocates the descriptor list accounts.
type SystemProgram interface {
	CreateAccount(
		ctx context.Context,
		payer, address solana.PublicKey,
		space int,
		owner solana.PublicKey,
		signers ledgerDomain.SignerSet,
	) error
}

// AllowWithDeps approves requests after checking a set of resolved dependency accounts.
// It exercises every descriptor kind: literal addresses, an address read from account
// data, an address derived under another program and one derived under itself.
type AllowWithDeps struct {
	programID solana.PublicKey
	engineID  solana.PublicKey
	accounts  AccountRepository
	system    SystemProgram
	logger    *slog.Logger
}

// NewAllowWithDeps creates an AllowWithDeps gate. engineID is the program that owns
// the flag accounts the gate accepts.
func NewAllowWithDeps(
	programID, engineID solana.PublicKey,
	accounts AccountRepository,
	system SystemProgram,
	logger *slog.Logger,
) *AllowWithDeps {
	return &AllowWithDeps{
		programID: programID,
		engineID:  engineID,
		accounts:  accounts,
		system:    system,
		logger:    logger,
	}
}

// ProgramID implements gateDomain.DecisionProgram.
func (g *AllowWithDeps) ProgramID() solana.PublicKey {
	return g.programID
}

// AllowWithDepsMetas returns the descriptor list the gate publishes for op.
func AllowWithDepsMetas(op gateDomain.Operation) ([]resolutionDomain.ExtraAccountMeta, error) {
	owner, err := resolutionDomain.NewPubkeyDataMeta(resolutionDomain.PubkeyData{
		Kind:   resolutionDomain.PubkeyDataKindAccountData,
		Index:  gateDomain.AccountTokenAccount,
		Offset: 32,
	}, false, false)
	if err != nil {
		return nil, err
	}
	ata, err := resolutionDomain.NewExternalSeedsMeta(depsAssociatedTokenProgram, []resolutionDomain.Seed{
		resolutionDomain.AccountKeySeed(gateDomain.AccountTokenAccountOwner),
		resolutionDomain.AccountKeySeed(depsTokenProgram),
		resolutionDomain.AccountKeySeed(gateDomain.AccountMint),
	}, false, false)
	if err != nil {
		return nil, err
	}
	self, err := resolutionDomain.NewSeedsMeta([]resolutionDomain.Seed{
		resolutionDomain.LiteralSeed(op.ExtraMetasSeed()),
		resolutionDomain.AccountKeySeed(gateDomain.AccountMint),
	}, false, false)
	if err != nil {
		return nil, err
	}
	return []resolutionDomain.ExtraAccountMeta{
		resolutionDomain.NewLiteralMeta(tokenDomain.AssociatedTokenProgramID, false, false),
		resolutionDomain.NewLiteralMeta(tokenDomain.ProgramID, false, false),
		owner,
		ata,
		self,
	}, nil
}

// Decide implements gateDomain.DecisionProgram.
func (g *AllowWithDeps) Decide(_ context.Context, req *gateDomain.DecisionRequest) error {
	if err := checkDiscriminator(req); err != nil {
		return err
	}
	if len(req.Accounts) < depsAccountCount {
		return ledgerDomain.ErrNotEnoughAccountKeys
	}
	accounts := req.Accounts

	if !accounts[depsAssociatedAccount].PublicKey.Equals(accounts[gateDomain.AccountTokenAccount].PublicKey) {
		return ledgerDomain.ErrInvalidArgument
	}
	if !accounts[depsExtraMetas].PublicKey.Equals(accounts[depsExtraMetasAgain].PublicKey) {
		return ledgerDomain.ErrInvalidAccountData
	}
	if !accounts[depsTokenProgram].PublicKey.Equals(tokenDomain.ProgramID) {
		return ledgerDomain.ErrIncorrectProgramID
	}
	flag := accounts[gateDomain.AccountFlag]
	if !flag.Owner.Equals(g.engineID) || !bytes.Equal(flag.Data, []byte{1}) {
		return ledgerDomain.ErrInvalidAccountData
	}
	if !accounts[depsAssociatedTokenProgram].PublicKey.Equals(tokenDomain.AssociatedTokenProgramID) {
		return ledgerDomain.ErrIncorrectProgramID
	}
	if !accounts[gateDomain.AccountTokenAccountOwner].PublicKey.Equals(accounts[depsOwnerAgain].PublicKey) {
		return ledgerDomain.ErrInvalidAccountData
	}
	return nil
}

// NewSetupInstruction builds the instruction creating both descriptor lists for mint.
func NewSetupInstruction(gate, payer, mint solana.PublicKey) (ledgerDomain.Instruction, error) {
	thaw, _, err := gateDomain.FindExtraMetasAddress(gateDomain.OperationThaw, mint, gate)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	freeze, _, err := gateDomain.FindExtraMetasAddress(gateDomain.OperationFreeze, mint, gate)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	return ledgerDomain.Instruction{
		ProgramID: gate,
		Accounts: []ledgerDomain.AccountMeta{
			ledgerDomain.NewAccountMeta(payer, true, true),
			ledgerDomain.NewAccountMeta(mint, false, false),
			ledgerDomain.NewAccountMeta(thaw, true, false),
			ledgerDomain.NewAccountMeta(freeze, true, false),
			ledgerDomain.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Data: append([]byte(nil), SetupDiscriminator[:]...),
	}, nil
}

// Process executes the descriptor list initializer.
func (g *AllowWithDeps) Process(ctx context.Context, ix *ledgerDomain.InstructionContext) error {
	if !bytes.Equal(ix.Data, SetupDiscriminator[:]) {
		return ledgerDomain.ErrInvalidInstructionData
	}
	keys, err := ix.Keys(5)
	if err != nil {
		return err
	}
	payer, mint, thawAddress, freezeAddress, systemProgram := keys[0], keys[1], keys[2], keys[3], keys[4]
	if !systemProgram.Equals(solana.SystemProgramID) {
		return ledgerDomain.ErrIncorrectProgramID
	}

	lists := []struct {
		op      gateDomain.Operation
		address solana.PublicKey
	}{
		{gateDomain.OperationThaw, thawAddress},
		{gateDomain.OperationFreeze, freezeAddress},
	}
	for _, list := range lists {
		expected, _, err := gateDomain.FindExtraMetasAddress(list.op, mint, g.programID)
		if err != nil || !expected.Equals(list.address) {
			return ledgerDomain.ErrInvalidSeeds
		}
	}

	size := resolutionDomain.ListSize(allowWithDepsMetaCount)
	for _, list := range lists {
		signers := ix.Signers.With(list.address)
		if err := g.system.CreateAccount(ctx, payer, list.address, size, g.programID, signers); err != nil {
			return err
		}

		metas, err := AllowWithDepsMetas(list.op)
		if err != nil {
			return err
		}
		encoded := (&resolutionDomain.ExtraAccountMetaList{
			Discriminator: list.op.Discriminator(),
			Metas:         metas,
		}).Marshal()

		account, err := g.accounts.Get(ctx, list.address)
		if err != nil {
			return err
		}
		account.Data = encoded
		if err := g.accounts.Update(ctx, account); err != nil {
			return err
		}
	}

	g.logger.Info("gate descriptor lists initialized",
		slog.String("gate", g.programID.String()),
		slog.String("mint", mint.String()),
	)
	return nil
}
