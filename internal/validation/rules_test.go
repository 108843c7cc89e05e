package validation

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenacl/internal/errors"
)

func TestPublicKey(t *testing.T) {
	assert.NoError(t, PublicKey.Validate(solana.SystemProgramID.String()))
	assert.NoError(t, PublicKey.Validate(solana.NewWallet().PublicKey().String()))
	assert.Error(t, PublicKey.Validate("0OIl0OIl0OIl"))
	assert.Error(t, PublicKey.Validate("abc"))
}

func TestSignature(t *testing.T) {
	wallet := solana.NewWallet()
	sig, err := wallet.PrivateKey.Sign([]byte("message"))
	require.NoError(t, err)

	assert.NoError(t, Signature.Validate(sig.String()))
	assert.Error(t, Signature.Validate(solana.SystemProgramID.String()))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("always-allow"))
	assert.NoError(t, NotBlank.Validate(" padded "))
	assert.Error(t, NotBlank.Validate("   "))
	assert.Error(t, NotBlank.Validate("\t\n"))
}

func TestInstructionData(t *testing.T) {
	rule := InstructionData(8)

	tests := []struct {
		name    string
		value   interface{}
		wantErr string
	}{
		{name: "empty", value: ""},
		{name: "opcode only", value: base64.StdEncoding.EncodeToString([]byte{10})},
		{name: "at limit", value: base64.StdEncoding.EncodeToString(make([]byte, 8))},
		{name: "over limit", value: base64.StdEncoding.EncodeToString(make([]byte, 9)), wantErr: "at most 8 bytes"},
		{name: "not base64", value: "not-valid-base64!@#", wantErr: "base64"},
		{name: "not a string", value: 42, wantErr: "must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.value)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("fee_payer: cannot be blank"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "fee_payer: cannot be blank")
}
