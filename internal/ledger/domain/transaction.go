package domain

import (
	"encoding/binary"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// Transaction is an ordered list of instructions executed as one atomic unit.
// Nonce distinguishes otherwise identical transactions so each has a unique signature.
type Transaction struct {
	FeePayer     solana.PublicKey
	Nonce        uint64
	Instructions []Instruction
	Signatures   []TransactionSignature
}

// TransactionSignature pairs a signer with its ed25519 signature over the message.
type TransactionSignature struct {
	PublicKey solana.PublicKey
	Signature solana.Signature
}

// Message returns the canonical bytes covered by every signature:
// fee payer, nonce, then each instruction as program id, account metas and data.
func (t *Transaction) Message() []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, t.FeePayer[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, t.Nonce)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(t.Instructions)))
	for _, ix := range t.Instructions {
		buf = append(buf, ix.ProgramID[:]...)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(ix.Accounts)))
		for _, meta := range ix.Accounts {
			buf = append(buf, meta.PublicKey[:]...)
			var flags byte
			if meta.IsSigner {
				flags |= 1
			}
			if meta.IsWritable {
				flags |= 2
			}
			buf = append(buf, flags)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.Data)))
		buf = append(buf, ix.Data...)
	}
	return buf
}

// Sign signs the message with every key, replacing earlier signatures by the same key.
func (t *Transaction) Sign(keys ...solana.PrivateKey) error {
	msg := t.Message()
	for _, key := range keys {
		sig, err := key.Sign(msg)
		if err != nil {
			return err
		}
		pub := key.PublicKey()
		replaced := false
		for i := range t.Signatures {
			if t.Signatures[i].PublicKey.Equals(pub) {
				t.Signatures[i].Signature = sig
				replaced = true
			}
		}
		if !replaced {
			t.Signatures = append(t.Signatures, TransactionSignature{PublicKey: pub, Signature: sig})
		}
	}
	return nil
}

// VerifiedSigners checks every signature against the message and returns the signer set.
func (t *Transaction) VerifiedSigners() (SignerSet, error) {
	msg := t.Message()
	signers := NewSignerSet()
	for _, s := range t.Signatures {
		if !s.Signature.Verify(s.PublicKey, msg) {
			return nil, ErrInvalidSignature
		}
		signers[s.PublicKey] = struct{}{}
	}
	return signers, nil
}

// ID returns the first signature, which identifies the transaction.
func (t *Transaction) ID() solana.Signature {
	if len(t.Signatures) == 0 {
		return solana.Signature{}
	}
	return t.Signatures[0].Signature
}

// TransactionStatus is the outcome of a submitted transaction.
type TransactionStatus string

const (
	TransactionStatusCommitted TransactionStatus = "committed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// TransactionRecord is the persisted outcome of a submission, kept for audit.
type TransactionRecord struct {
	ID               uuid.UUID
	Signature        string
	FeePayer         string
	Status           TransactionStatus
	ErrorCode        *uint32
	ErrorMessage     string
	InstructionCount int
	CreatedAt        time.Time
}
