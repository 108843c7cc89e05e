package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/hashicorp/go-retryablehttp"

	apperrors "github.com/allisson/tokenacl/internal/errors"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

const (
	defaultWebhookTimeout  = 5 * time.Second
	defaultWebhookRetryMax = 2
	maxWebhookResponseSize = 64 * 1024
)

// webhookAccount is one account of a decision call as posted to the policy endpoint.
type webhookAccount struct {
	Address    string `json:"address"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
	Exists     bool   `json:"exists"`
	Owner      string `json:"owner,omitempty"`
	Data       []byte `json:"data,omitempty"`
}

type webhookRequest struct {
	Operation    gateDomain.Operation `json:"operation"`
	ProgramID    string               `json:"program_id"`
	Authority    string               `json:"authority"`
	TokenAccount string               `json:"token_account"`
	Mint         string               `json:"mint"`
	Owner        string               `json:"owner"`
	Accounts     []webhookAccount     `json:"accounts"`
}

type webhookResponse struct {
	Allow bool   `json:"allow"`
	Code  uint32 `json:"code"`
}

// Webhook delegates decisions to a remote HTTP policy endpoint. The endpoint answers
// {"allow": true} to approve or {"allow": false, "code": N} to deny with code N.
type Webhook struct {
	programID solana.PublicKey
	url       string
	client    *retryablehttp.Client
	logger    *slog.Logger
}

// NewWebhook creates a Webhook gate posting to url. A zero timeout or negative
// retryMax selects the defaults.
func NewWebhook(
	programID solana.PublicKey,
	url string,
	timeout time.Duration,
	retryMax int,
	logger *slog.Logger,
) *Webhook {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	if retryMax < 0 {
		retryMax = defaultWebhookRetryMax
	}

	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 50 * time.Millisecond
	client.RetryWaitMax = 500 * time.Millisecond
	client.HTTPClient.Timeout = timeout
	client.Logger = logger

	return &Webhook{programID: programID, url: url, client: client, logger: logger}
}

// ProgramID implements gateDomain.DecisionProgram.
func (g *Webhook) ProgramID() solana.PublicKey {
	return g.programID
}

// Decide implements gateDomain.DecisionProgram.
func (g *Webhook) Decide(ctx context.Context, req *gateDomain.DecisionRequest) error {
	if err := checkDiscriminator(req); err != nil {
		return err
	}
	if len(req.Accounts) <= gateDomain.AccountFlag {
		return ledgerDomain.ErrNotEnoughAccountKeys
	}

	payload := webhookRequest{
		Operation:    req.Operation,
		ProgramID:    g.programID.String(),
		Authority:    req.Accounts[gateDomain.AccountAuthority].PublicKey.String(),
		TokenAccount: req.Accounts[gateDomain.AccountTokenAccount].PublicKey.String(),
		Mint:         req.Accounts[gateDomain.AccountMint].PublicKey.String(),
		Owner:        req.Accounts[gateDomain.AccountTokenAccountOwner].PublicKey.String(),
		Accounts:     make([]webhookAccount, 0, len(req.Accounts)),
	}
	for _, view := range req.Accounts {
		account := webhookAccount{
			Address:    view.PublicKey.String(),
			IsSigner:   view.IsSigner,
			IsWritable: view.IsWritable,
			Exists:     view.Exists,
			Data:       view.Data,
		}
		if view.Exists {
			account.Owner = view.Owner.String()
		}
		payload.Accounts = append(payload.Accounts, account)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode webhook request")
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.url, body)
	if err != nil {
		return apperrors.Wrap(err, "failed to build webhook request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return apperrors.Wrapf(gateDomain.ErrGateUnavailable, "request failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Wrapf(gateDomain.ErrGateUnavailable, "unexpected status %d", resp.StatusCode)
	}

	var decision webhookResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxWebhookResponseSize)).Decode(&decision); err != nil {
		return apperrors.Wrapf(gateDomain.ErrGateUnavailable, "invalid response: %v", err)
	}

	if !decision.Allow {
		g.logger.Debug("webhook denied request",
			slog.String("gate", g.programID.String()),
			slog.String("operation", string(req.Operation)),
			slog.Uint64("code", uint64(decision.Code)),
		)
		return ledgerDomain.CustomError(decision.Code)
	}
	return nil
}
