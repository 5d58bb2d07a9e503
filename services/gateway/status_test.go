package gateway

import (
	"testing"

	"campuspay/models"

	"github.com/stretchr/testify/assert"
)

func TestMapStatus(t *testing.T) {
	cases := []struct {
		provider models.Provider
		raw      string
		want     models.TransactionStatus
	}{
		{models.ProviderHormuud, "APPROVED", models.TxnCompleted},
		{models.ProviderHormuud, "RCS_SUCCESS", models.TxnCompleted},
		{models.ProviderHormuud, "DECLINED", models.TxnFailed},
		{models.ProviderHormuud, "TIMEOUT", models.TxnFailed},
		{models.ProviderZaad, "approved", models.TxnCompleted},
		{models.ProviderZaad, " Cancelled ", models.TxnCancelled},
		{models.ProviderEdahab, "Paid", models.TxnCompleted},
		{models.ProviderEdahab, "UNPAID", models.TxnProcessing},
		{models.ProviderEdahab, "EXPIRED", models.TxnFailed},
		{models.ProviderPremier, "SUCCEEDED", models.TxnCompleted},
		{models.ProviderPremier, "REVERSED", models.TxnRefunded},
	}
	for _, tc := range cases {
		t.Run(string(tc.provider)+"/"+tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, MapStatus(tc.provider, tc.raw))
		})
	}
}

func TestMapStatusUnknownIsPending(t *testing.T) {
	// Never assume success on a code we have not seen before.
	assert.Equal(t, models.TxnPending, MapStatus(models.ProviderHormuud, "TOTALLY_NEW_CODE"))
	assert.Equal(t, models.TxnPending, MapStatus(models.ProviderEdahab, ""))
	assert.Equal(t, models.TxnPending, MapStatus(models.Provider("unknown-provider"), "PAID"))
}
