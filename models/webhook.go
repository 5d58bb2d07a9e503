package models

// WebhookPayload is the asynchronous confirmation a provider POSTs back.
// TransactionID may carry either the provider's reference or our own
// transaction id, depending on the provider. Signature is a hex HMAC-SHA256
// over transactionId|status|amount|timestamp using the shared secret.
type WebhookPayload struct {
	TransactionID string  `json:"transactionId"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Phone         string  `json:"phone,omitempty"`
	Timestamp     string  `json:"timestamp"`
	Signature     string  `json:"signature"`
}
