package payment

import (
	"context"
	"fmt"
	"time"

	ledgerRepo "campuspay/database/repository/ledger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ReceiptGenerator produces receipt numbers for ledger entries. Uniqueness
// is ultimately enforced by the ledger's unique receiptNo index.
type ReceiptGenerator interface {
	Next() (string, error)
}

// RedisReceiptGenerator draws sequence numbers from a per-year Redis counter,
// falling back to a ledger count when Redis is unavailable.
type RedisReceiptGenerator struct {
	Client *redis.Client
	Ledger ledgerRepo.LedgerRepository
	Logger *zap.Logger
}

// Next returns the next receipt number, formatted RCPT-<year>-<seq>.
func (g *RedisReceiptGenerator) Next() (string, error) {
	year := time.Now().Year()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	seq, err := g.Client.Incr(ctx, fmt.Sprintf("receipt:seq:%d", year)).Result()
	if err == nil {
		return fmt.Sprintf("RCPT-%d-%06d", year, seq), nil
	}
	g.Logger.Warn("receipt counter unavailable, falling back to ledger count", zap.Error(err))

	count, err := g.Ledger.CountByYear(year)
	if err != nil {
		return "", fmt.Errorf("failed to generate receipt number: %w", err)
	}
	// The unique index rejects collisions; the nanosecond suffix keeps
	// retries under the fallback path from tripping over each other.
	return fmt.Sprintf("RCPT-%d-%06d-%d", year, count+1, time.Now().UnixNano()%1000), nil
}
