package gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"campuspay/config"
	"campuspay/models"

	"go.uber.org/zap"
)

// EdahabGateway integrates the Somtel eDahab invoice API. Requests are
// authenticated with a SHA-256 digest of the body and the API key, passed as
// a query parameter.
type EdahabGateway struct {
	cfg    config.ProviderConfig
	client *http.Client
	logger *zap.Logger
}

func NewEdahabGateway(cfg config.ProviderConfig, client *http.Client, logger *zap.Logger) *EdahabGateway {
	return &EdahabGateway{cfg: cfg, client: client, logger: logger}
}

func (g *EdahabGateway) Name() models.Provider {
	return models.ProviderEdahab
}

type edahabChargeRequest struct {
	APIKey       string  `json:"apiKey"`
	EdahabNumber string  `json:"edahabNumber"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	AgentCode    string  `json:"agentCode"`
	ReturnID     string  `json:"transactionId"`
}

type edahabChargeResponse struct {
	InvoiceID     string `json:"invoiceId"`
	StatusCode    int    `json:"statusCode"`
	StatusDesc    string `json:"statusDescription"`
	InvoiceStatus string `json:"invoiceStatus"`
}

type edahabStatusRequest struct {
	APIKey    string `json:"apiKey"`
	InvoiceID string `json:"invoiceId"`
}

// Charge issues an eDahab invoice against the payer's wallet. The subscriber
// number is submitted without the dialing prefix.
func (g *EdahabGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body := edahabChargeRequest{
		APIKey:       g.cfg.APIUserID,
		EdahabNumber: req.Phone[len(CountryCode):],
		Amount:       req.Amount,
		Currency:     req.Currency,
		AgentCode:    g.cfg.MerchantUID,
		ReturnID:     req.Reference,
	}

	var resp edahabChargeResponse
	if err := g.post(ctx, "/api/issueinvoice", body, &resp); err != nil {
		return nil, err
	}

	if resp.StatusCode != 0 {
		g.logger.Warn("edahab charge rejected",
			zap.Int("code", resp.StatusCode),
			zap.String("message", resp.StatusDesc))
		return &ChargeResult{Accepted: false, Message: resp.StatusDesc}, nil
	}

	return &ChargeResult{Accepted: true, ProviderRef: resp.InvoiceID, Message: resp.StatusDesc}, nil
}

// CheckStatus fetches the invoice status for a previously issued charge.
func (g *EdahabGateway) CheckStatus(ctx context.Context, providerRef string) (models.TransactionStatus, error) {
	body := edahabStatusRequest{APIKey: g.cfg.APIUserID, InvoiceID: providerRef}

	var resp edahabChargeResponse
	if err := g.post(ctx, "/api/checkinvoicestatus", body, &resp); err != nil {
		return "", err
	}
	return MapStatus(models.ProviderEdahab, resp.InvoiceStatus), nil
}

func (g *EdahabGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode edahab request: %w", err)
	}

	digest := sha256.Sum256(append(payload, []byte(g.cfg.APIKey)...))
	url := g.cfg.Endpoint + path + "?hash=" + hex.EncodeToString(digest[:])

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build edahab request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("edahab request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return fmt.Errorf("edahab returned status %d", httpResp.StatusCode)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode edahab response: %w", err)
	}
	return nil
}
