// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
)

// MintConfigResponse represents a mint config record in API responses. GatingProgram
// is empty when permissionless operations have no decision program.
type MintConfigResponse struct {
	Address                    string `json:"address"`
	Mint                       string `json:"mint"`
	Authority                  string `json:"authority"`
	GatingProgram              string `json:"gating_program,omitempty"`
	Bump                       uint8  `json:"bump"`
	EnablePermissionlessFreeze bool   `json:"enable_permissionless_freeze"`
	EnablePermissionlessThaw   bool   `json:"enable_permissionless_thaw"`
}

// MapMintConfigToResponse converts a config record stored at address to an API response.
func MapMintConfigToResponse(address solana.PublicKey, config *aclDomain.MintConfig) MintConfigResponse {
	response := MintConfigResponse{
		Address:                    address.String(),
		Mint:                       config.Mint.String(),
		Authority:                  config.Authority.String(),
		Bump:                       config.Bump,
		EnablePermissionlessFreeze: config.EnablePermissionlessFreeze,
		EnablePermissionlessThaw:   config.EnablePermissionlessThaw,
	}
	if config.HasGatingProgram() {
		response.GatingProgram = config.GatingProgram.String()
	}
	return response
}
