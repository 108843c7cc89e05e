// Package http provides HTTP handlers for reading mint config records.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	"github.com/allisson/tokenacl/internal/acl/http/dto"
	aclUseCase "github.com/allisson/tokenacl/internal/acl/usecase"
	"github.com/allisson/tokenacl/internal/httputil"
)

// MintConfigHandler serves mint config lookups.
type MintConfigHandler struct {
	programID     solana.PublicKey
	configUseCase aclUseCase.ConfigUseCase
	logger        *slog.Logger
}

// NewMintConfigHandler creates a new mint config handler.
func NewMintConfigHandler(
	programID solana.PublicKey,
	configUseCase aclUseCase.ConfigUseCase,
	logger *slog.Logger,
) *MintConfigHandler {
	return &MintConfigHandler{
		programID:     programID,
		configUseCase: configUseCase,
		logger:        logger,
	}
}

// GetHandler retrieves the config record of a mint.
// GET /v1/mint-configs/:mint
func (h *MintConfigHandler) GetHandler(c *gin.Context) {
	mint, err := solana.PublicKeyFromBase58(c.Param("mint"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid mint: %w", err), h.logger)
		return
	}

	config, err := h.configUseCase.Get(c.Request.Context(), mint)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	address, _, err := aclDomain.FindMintConfigAddress(h.programID, mint)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMintConfigToResponse(address, config))
}
