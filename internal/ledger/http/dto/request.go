// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	"github.com/gagliardetto/solana-go"
	validation "github.com/jellydator/validation"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	customValidation "github.com/allisson/tokenacl/internal/validation"
)

const (
	maxInstructions        = 64
	maxAccountsPerInstruct = 64
	maxSignatures          = 16
	maxInstructionData     = 1232
)

// AccountMetaRequest is one account reference of an instruction.
type AccountMetaRequest struct {
	PublicKey  string `json:"public_key"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// Validate checks the account reference.
func (r AccountMetaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PublicKey, validation.Required, customValidation.PublicKey),
	)
}

// InstructionRequest is one instruction of a submitted transaction. Data is base64.
type InstructionRequest struct {
	ProgramID string               `json:"program_id"`
	Accounts  []AccountMetaRequest `json:"accounts"`
	Data      string               `json:"data"`
}

// Validate checks the instruction.
func (r InstructionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProgramID, validation.Required, customValidation.PublicKey),
		validation.Field(&r.Accounts, validation.Length(0, maxAccountsPerInstruct)),
		validation.Field(&r.Data, customValidation.InstructionData(maxInstructionData)),
	)
}

// SignatureRequest is one signer's signature over the transaction message.
type SignatureRequest struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// Validate checks the signature entry.
func (r SignatureRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PublicKey, validation.Required, customValidation.PublicKey),
		validation.Field(&r.Signature, validation.Required, customValidation.Signature),
	)
}

// SubmitTransactionRequest contains a signed transaction.
type SubmitTransactionRequest struct {
	FeePayer     string               `json:"fee_payer"`
	Nonce        uint64               `json:"nonce"`
	Instructions []InstructionRequest `json:"instructions"`
	Signatures   []SignatureRequest   `json:"signatures"`
}

// Validate checks if the submit transaction request is valid.
func (r *SubmitTransactionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FeePayer, validation.Required, customValidation.PublicKey),
		validation.Field(&r.Instructions, validation.Required, validation.Length(1, maxInstructions)),
		validation.Field(&r.Signatures, validation.Required, validation.Length(1, maxSignatures)),
	)
}

// ToDomain converts a validated request into a transaction.
func (r *SubmitTransactionRequest) ToDomain() (*ledgerDomain.Transaction, error) {
	feePayer, err := solana.PublicKeyFromBase58(r.FeePayer)
	if err != nil {
		return nil, err
	}
	tx := &ledgerDomain.Transaction{
		FeePayer:     feePayer,
		Nonce:        r.Nonce,
		Instructions: make([]ledgerDomain.Instruction, 0, len(r.Instructions)),
		Signatures:   make([]ledgerDomain.TransactionSignature, 0, len(r.Signatures)),
	}

	for _, ix := range r.Instructions {
		programID, err := solana.PublicKeyFromBase58(ix.ProgramID)
		if err != nil {
			return nil, err
		}
		data, err := base64.StdEncoding.DecodeString(ix.Data)
		if err != nil {
			return nil, err
		}
		accounts := make([]ledgerDomain.AccountMeta, 0, len(ix.Accounts))
		for _, meta := range ix.Accounts {
			key, err := solana.PublicKeyFromBase58(meta.PublicKey)
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, ledgerDomain.NewAccountMeta(key, meta.IsWritable, meta.IsSigner))
		}
		tx.Instructions = append(tx.Instructions, ledgerDomain.Instruction{
			ProgramID: programID,
			Accounts:  accounts,
			Data:      data,
		})
	}

	for _, sig := range r.Signatures {
		key, err := solana.PublicKeyFromBase58(sig.PublicKey)
		if err != nil {
			return nil, err
		}
		signature, err := solana.SignatureFromBase58(sig.Signature)
		if err != nil {
			return nil, err
		}
		tx.Signatures = append(tx.Signatures, ledgerDomain.TransactionSignature{PublicKey: key, Signature: signature})
	}
	return tx, nil
}

// MapTransactionToRequest converts a signed transaction into its wire form. CLI commands
// that talk to a remote server use it, and tests use it to build fixtures.
func MapTransactionToRequest(tx *ledgerDomain.Transaction) SubmitTransactionRequest {
	req := SubmitTransactionRequest{
		FeePayer:     tx.FeePayer.String(),
		Nonce:        tx.Nonce,
		Instructions: make([]InstructionRequest, 0, len(tx.Instructions)),
		Signatures:   make([]SignatureRequest, 0, len(tx.Signatures)),
	}
	for _, ix := range tx.Instructions {
		accounts := make([]AccountMetaRequest, 0, len(ix.Accounts))
		for _, meta := range ix.Accounts {
			accounts = append(accounts, AccountMetaRequest{
				PublicKey:  meta.PublicKey.String(),
				IsSigner:   meta.IsSigner,
				IsWritable: meta.IsWritable,
			})
		}
		req.Instructions = append(req.Instructions, InstructionRequest{
			ProgramID: ix.ProgramID.String(),
			Accounts:  accounts,
			Data:      base64.StdEncoding.EncodeToString(ix.Data),
		})
	}
	for _, sig := range tx.Signatures {
		req.Signatures = append(req.Signatures, SignatureRequest{
			PublicKey: sig.PublicKey.String(),
			Signature: sig.Signature.String(),
		})
	}
	return req
}
