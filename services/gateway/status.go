package gateway

import (
	"strings"

	"campuspay/models"
)

// Each provider speaks its own status vocabulary; the tables below map it to
// the canonical enum. Unrecognized values map to PENDING — never assume
// success on an unknown code.
var statusTables = map[models.Provider]map[string]models.TransactionStatus{
	models.ProviderHormuud: waafiStatuses,
	models.ProviderZaad:    waafiStatuses,
	models.ProviderEdahab: {
		"PAID":      models.TxnCompleted,
		"SUCCESS":   models.TxnCompleted,
		"PENDING":   models.TxnPending,
		"UNPAID":    models.TxnProcessing,
		"FAILED":    models.TxnFailed,
		"EXPIRED":   models.TxnFailed,
		"CANCELLED": models.TxnCancelled,
		"REFUNDED":  models.TxnRefunded,
	},
	models.ProviderPremier: {
		"SUCCEEDED":  models.TxnCompleted,
		"SUCCESS":    models.TxnCompleted,
		"PAID":       models.TxnCompleted,
		"PENDING":    models.TxnPending,
		"PROCESSING": models.TxnProcessing,
		"FAILED":     models.TxnFailed,
		"DECLINED":   models.TxnFailed,
		"CANCELLED":  models.TxnCancelled,
		"REVERSED":   models.TxnRefunded,
		"REFUNDED":   models.TxnRefunded,
	},
}

// waafiStatuses covers the WaafiPay state vocabulary shared by the Hormuud
// and Zaad integrations.
var waafiStatuses = map[string]models.TransactionStatus{
	"APPROVED":    models.TxnCompleted,
	"RCS_SUCCESS": models.TxnCompleted,
	"SUCCESS":     models.TxnCompleted,
	"PAID":        models.TxnCompleted,
	"PENDING":     models.TxnPending,
	"PROCESSING":  models.TxnProcessing,
	"INITIATED":   models.TxnProcessing,
	"DECLINED":    models.TxnFailed,
	"REJECTED":    models.TxnFailed,
	"FAILED":      models.TxnFailed,
	"TIMEOUT":     models.TxnFailed,
	"CANCELLED":   models.TxnCancelled,
	"CANCELED":    models.TxnCancelled,
	"REFUNDED":    models.TxnRefunded,
}

// MapStatus translates a provider's native status string to canonical form.
func MapStatus(provider models.Provider, raw string) models.TransactionStatus {
	table, ok := statusTables[provider]
	if !ok {
		return models.TxnPending
	}
	status, ok := table[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return models.TxnPending
	}
	return status
}
