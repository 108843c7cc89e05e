package dto

import (
	"encoding/base64"
	"time"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// TransactionRecordResponse represents a submission outcome in API responses.
type TransactionRecordResponse struct {
	ID               string    `json:"id"`
	Signature        string    `json:"signature"`
	FeePayer         string    `json:"fee_payer"`
	Status           string    `json:"status"`
	ErrorCode        *uint32   `json:"error_code,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	InstructionCount int       `json:"instruction_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// MapTransactionRecordToResponse converts a domain record to an API response.
func MapTransactionRecordToResponse(record *ledgerDomain.TransactionRecord) TransactionRecordResponse {
	return TransactionRecordResponse{
		ID:               record.ID.String(),
		Signature:        record.Signature,
		FeePayer:         record.FeePayer,
		Status:           string(record.Status),
		ErrorCode:        record.ErrorCode,
		ErrorMessage:     record.ErrorMessage,
		InstructionCount: record.InstructionCount,
		CreatedAt:        record.CreatedAt,
	}
}

// ListTransactionRecordsResponse represents a paginated list of records.
type ListTransactionRecordsResponse struct {
	Data       []TransactionRecordResponse `json:"data"`
	NextOffset *int                        `json:"next_offset,omitempty"`
}

// MapTransactionRecordsToListResponse converts domain records to a list response.
func MapTransactionRecordsToListResponse(records []*ledgerDomain.TransactionRecord) ListTransactionRecordsResponse {
	data := make([]TransactionRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapTransactionRecordToResponse(record))
	}
	return ListTransactionRecordsResponse{Data: data}
}

// AccountResponse represents a ledger account in API responses. Data is base64.
type AccountResponse struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Lamports uint64 `json:"lamports"`
	Data     string `json:"data"`
}

// MapAccountToResponse converts a domain account to an API response.
func MapAccountToResponse(account *ledgerDomain.Account) AccountResponse {
	return AccountResponse{
		Address:  account.Address.String(),
		Owner:    account.Owner.String(),
		Lamports: account.Lamports,
		Data:     base64.StdEncoding.EncodeToString(account.Data),
	}
}
