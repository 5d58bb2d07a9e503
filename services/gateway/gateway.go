package gateway

import (
	"context"
	"net/http"
	"sort"
	"time"

	"campuspay/config"
	"campuspay/models"

	"go.uber.org/zap"
)

// ChargeRequest asks a provider to pull funds from a payer's account.
// Phone must already be in canonical international form and Reference is our
// transaction id, echoed back by the provider in callbacks.
type ChargeRequest struct {
	Phone       string
	Amount      float64
	Currency    string
	Reference   string
	Description string
}

// ChargeResult is the synchronous outcome of a charge submission. Accepted
// means the provider took the request and will confirm asynchronously; a
// rejection carries the provider's message.
type ChargeResult struct {
	Accepted    bool
	ProviderRef string
	Message     string
}

// Gateway is implemented once per payment provider.
type Gateway interface {
	Name() models.Provider
	// Charge submits a charge request. A non-nil error means the call itself
	// failed (network, timeout, provider 5xx) and the outcome is unknown.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	// CheckStatus asks the provider for the current status of a reference,
	// mapped to the canonical transaction status vocabulary.
	CheckStatus(ctx context.Context, providerRef string) (models.TransactionStatus, error)
}

// Registry holds the configured gateways keyed by provider.
type Registry struct {
	gateways map[models.Provider]Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[models.Provider]Gateway)}
}

// Register adds a gateway to the registry.
func (r *Registry) Register(g Gateway) {
	r.gateways[g.Name()] = g
}

// Get returns the gateway for a provider, if configured.
func (r *Registry) Get(provider models.Provider) (Gateway, bool) {
	g, ok := r.gateways[provider]
	return g, ok
}

// Enabled returns the configured providers in stable order.
func (r *Registry) Enabled() []models.Provider {
	providers := make([]models.Provider, 0, len(r.gateways))
	for p := range r.gateways {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}

// NewRegistryFromConfig builds the registry from per-provider credentials.
// Providers without credentials are simply not registered, which disables
// the method on the HTTP surface.
func NewRegistryFromConfig(cfg config.Config, logger *zap.Logger) *Registry {
	client := &http.Client{Timeout: 30 * time.Second}
	registry := NewRegistry()

	if cfg.Hormuud.Enabled() {
		registry.Register(NewWaafiGateway(models.ProviderHormuud, cfg.Hormuud, client, logger))
	}
	if cfg.Zaad.Enabled() {
		registry.Register(NewWaafiGateway(models.ProviderZaad, cfg.Zaad, client, logger))
	}
	if cfg.Edahab.Enabled() {
		registry.Register(NewEdahabGateway(cfg.Edahab, client, logger))
	}
	if cfg.Premier.Enabled() {
		registry.Register(NewPremierGateway(cfg.Premier, client, logger))
	}

	logger.Info("payment gateways configured", zap.Any("providers", registry.Enabled()))
	return registry
}
