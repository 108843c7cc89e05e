// Package http provides HTTP handlers for transaction submission and ledger reads.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/tokenacl/internal/httputil"
	"github.com/allisson/tokenacl/internal/ledger/http/dto"
	ledgerUseCase "github.com/allisson/tokenacl/internal/ledger/usecase"
	customValidation "github.com/allisson/tokenacl/internal/validation"
)

// TransactionHandler handles transaction submission and record lookups.
type TransactionHandler struct {
	transactionUseCase ledgerUseCase.TransactionUseCase
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(
	transactionUseCase ledgerUseCase.TransactionUseCase,
	logger *slog.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
		logger:             logger,
	}
}

// SubmitHandler verifies and executes a signed transaction.
// POST /v1/transactions
// Returns 201 Created with the record when every instruction succeeded. A failed
// transaction is still recorded; the error response carries the program code.
func (h *TransactionHandler) SubmitHandler(c *gin.Context) {
	var req dto.SubmitTransactionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tx, err := req.ToDomain()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	record, err := h.transactionUseCase.Submit(c.Request.Context(), tx)
	if err != nil {
		if record != nil {
			c.Header("X-Transaction-Id", record.ID.String())
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTransactionRecordToResponse(record))
}

// GetHandler retrieves a submission record by id.
// GET /v1/transactions/:id
func (h *TransactionHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid transaction id: %w", err), h.logger)
		return
	}

	record, err := h.transactionUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransactionRecordToResponse(record))
}

// ListHandler retrieves submission records newest first.
// GET /v1/transactions?offset=0&limit=50
func (h *TransactionHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	records, err := h.transactionUseCase.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapTransactionRecordsToListResponse(records)
	response.NextOffset = page.Next(len(records))
	c.JSON(http.StatusOK, response)
}

// AccountHandler serves ledger account reads.
type AccountHandler struct {
	accountUseCase ledgerUseCase.AccountUseCase
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accountUseCase ledgerUseCase.AccountUseCase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accountUseCase: accountUseCase, logger: logger}
}

// GetHandler retrieves the account stored at an address.
// GET /v1/accounts/:address
func (h *AccountHandler) GetHandler(c *gin.Context) {
	address, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid address: %w", err), h.logger)
		return
	}

	account, err := h.accountUseCase.Get(c.Request.Context(), address)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccountToResponse(account))
}
