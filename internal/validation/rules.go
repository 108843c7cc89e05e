// Package validation holds jellydator rules shared by request DTOs and config loaders.
package validation

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/tokenacl/internal/errors"
)

// WrapValidationError marks a validation failure as ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PublicKey accepts a base58-encoded 32-byte address.
var PublicKey = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := solana.PublicKeyFromBase58(s)
		return err == nil
	},
	validation.NewError("validation_public_key", "must be a base58-encoded public key"),
)

// Signature accepts a base58-encoded 64-byte ed25519 signature.
var Signature = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := solana.SignatureFromBase58(s)
		return err == nil
	},
	validation.NewError("validation_signature", "must be a base58-encoded signature"),
)

// NotBlank rejects strings that are empty once trimmed.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// InstructionData accepts standard base64 that decodes to at most maxBytes.
// Empty input passes so Required stays in charge of presence.
func InstructionData(maxBytes int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_instruction_data_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_instruction_data", "must be valid base64-encoded data")
		}
		if len(data) > maxBytes {
			return validation.NewError(
				"validation_instruction_data_size",
				fmt.Sprintf("must decode to at most %d bytes", maxBytes),
			)
		}
		return nil
	})
}
