package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campuspay/config"
	"campuspay/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// waafiSuccessCode is the response code WaafiPay returns for an approved
// purchase request.
const waafiSuccessCode = "2001"

// WaafiGateway integrates the WaafiPay merchant API. Hormuud (EVC Plus) and
// Telesom (Zaad) both sit behind it, with separate merchant credentials.
type WaafiGateway struct {
	name   models.Provider
	cfg    config.ProviderConfig
	client *http.Client
	logger *zap.Logger
}

func NewWaafiGateway(name models.Provider, cfg config.ProviderConfig, client *http.Client, logger *zap.Logger) *WaafiGateway {
	return &WaafiGateway{name: name, cfg: cfg, client: client, logger: logger}
}

func (g *WaafiGateway) Name() models.Provider {
	return g.name
}

type waafiRequest struct {
	SchemaVersion string      `json:"schemaVersion"`
	RequestID     string      `json:"requestId"`
	Timestamp     string      `json:"timestamp"`
	ChannelName   string      `json:"channelName"`
	ServiceName   string      `json:"serviceName"`
	ServiceParams waafiParams `json:"serviceParams"`
}

type waafiParams struct {
	MerchantUID     string                `json:"merchantUid"`
	APIUserID       string                `json:"apiUserId"`
	APIKey          string                `json:"apiKey"`
	PaymentMethod   string                `json:"paymentMethod,omitempty"`
	PayerInfo       *waafiPayerInfo       `json:"payerInfo,omitempty"`
	TransactionInfo *waafiTransactionInfo `json:"transactionInfo,omitempty"`
	TransactionID   string                `json:"transactionId,omitempty"`
}

type waafiPayerInfo struct {
	AccountNo string `json:"accountNo"`
}

type waafiTransactionInfo struct {
	ReferenceID string  `json:"referenceId"`
	InvoiceID   string  `json:"invoiceId"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description,omitempty"`
}

type waafiResponse struct {
	ResponseCode string `json:"responseCode"`
	ResponseMsg  string `json:"responseMsg"`
	Params       struct {
		TransactionID string `json:"transactionId"`
		State         string `json:"state"`
	} `json:"params"`
}

// Charge submits an API_PURCHASE request pulling the amount from the payer's
// mobile wallet.
func (g *WaafiGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body := waafiRequest{
		SchemaVersion: "1.0",
		RequestID:     uuid.New().String(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ChannelName:   "WEB",
		ServiceName:   "API_PURCHASE",
		ServiceParams: waafiParams{
			MerchantUID:   g.cfg.MerchantUID,
			APIUserID:     g.cfg.APIUserID,
			APIKey:        g.cfg.APIKey,
			PaymentMethod: "MWALLET_ACCOUNT",
			PayerInfo:     &waafiPayerInfo{AccountNo: req.Phone},
			TransactionInfo: &waafiTransactionInfo{
				ReferenceID: req.Reference,
				InvoiceID:   req.Reference,
				Amount:      req.Amount,
				Currency:    req.Currency,
				Description: req.Description,
			},
		},
	}

	var resp waafiResponse
	if err := g.post(ctx, body, &resp); err != nil {
		return nil, err
	}

	if resp.ResponseCode != waafiSuccessCode {
		g.logger.Warn("waafi charge rejected",
			zap.String("provider", string(g.name)),
			zap.String("code", resp.ResponseCode),
			zap.String("message", resp.ResponseMsg))
		return &ChargeResult{Accepted: false, Message: resp.ResponseMsg}, nil
	}

	return &ChargeResult{
		Accepted:    true,
		ProviderRef: resp.Params.TransactionID,
		Message:     resp.ResponseMsg,
	}, nil
}

// CheckStatus asks WaafiPay for the current state of a transaction.
func (g *WaafiGateway) CheckStatus(ctx context.Context, providerRef string) (models.TransactionStatus, error) {
	body := waafiRequest{
		SchemaVersion: "1.0",
		RequestID:     uuid.New().String(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ChannelName:   "WEB",
		ServiceName:   "API_GETTRANSACTIONINFO",
		ServiceParams: waafiParams{
			MerchantUID:   g.cfg.MerchantUID,
			APIUserID:     g.cfg.APIUserID,
			APIKey:        g.cfg.APIKey,
			TransactionID: providerRef,
		},
	}

	var resp waafiResponse
	if err := g.post(ctx, body, &resp); err != nil {
		return "", err
	}

	return MapStatus(g.name, resp.Params.State), nil
}

func (g *WaafiGateway) post(ctx context.Context, body waafiRequest, out *waafiResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode waafi request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build waafi request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("waafi request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return fmt.Errorf("waafi returned status %d", httpResp.StatusCode)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode waafi response: %w", err)
	}
	return nil
}
