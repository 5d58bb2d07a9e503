package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"campuspay/config"
	"campuspay/models"

	"go.uber.org/zap"
)

// PremierGateway integrates the Premier Wallet REST API (bank-backed wallet
// charges). Plain bearer-token authentication, charge then poll.
type PremierGateway struct {
	cfg    config.ProviderConfig
	client *http.Client
	logger *zap.Logger
}

func NewPremierGateway(cfg config.ProviderConfig, client *http.Client, logger *zap.Logger) *PremierGateway {
	return &PremierGateway{cfg: cfg, client: client, logger: logger}
}

func (g *PremierGateway) Name() models.Provider {
	return models.ProviderPremier
}

type premierChargeRequest struct {
	MerchantID string  `json:"merchantId"`
	AccountNo  string  `json:"accountNo"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Reference  string  `json:"reference"`
	Narrative  string  `json:"narrative,omitempty"`
}

type premierChargeResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Charge submits a wallet charge request.
func (g *PremierGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body := premierChargeRequest{
		MerchantID: g.cfg.MerchantUID,
		AccountNo:  req.Phone,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Reference:  req.Reference,
		Narrative:  req.Description,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode premier request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint+"/v1/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build premier request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("premier charge failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp premierChargeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode premier response: %w", err)
	}

	switch {
	case httpResp.StatusCode >= 500:
		return nil, fmt.Errorf("premier returned status %d", httpResp.StatusCode)
	case httpResp.StatusCode >= 400:
		g.logger.Warn("premier charge rejected",
			zap.Int("status", httpResp.StatusCode),
			zap.String("message", resp.Message))
		return &ChargeResult{Accepted: false, Message: resp.Message}, nil
	}

	return &ChargeResult{Accepted: true, ProviderRef: resp.ID, Message: resp.Message}, nil
}

// CheckStatus fetches the current status of a charge.
func (g *PremierGateway) CheckStatus(ctx context.Context, providerRef string) (models.TransactionStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.Endpoint+"/v1/charges/"+providerRef, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build premier status request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("premier status check failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", fmt.Errorf("premier returned status %d", httpResp.StatusCode)
	}

	var resp premierChargeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("failed to decode premier response: %w", err)
	}
	return MapStatus(models.ProviderPremier, resp.Status), nil
}
