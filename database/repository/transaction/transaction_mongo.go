package transactionRepo

import (
	"context"
	"fmt"
	"time"

	"campuspay/database"
	"campuspay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTransactionRepo implements TransactionRepository using MongoDB.
type MongoTransactionRepo struct {
	coll *mongo.Collection
}

// NewMongoTransactionRepo creates a new instance of TransactionRepository using MongoDB.
func NewMongoTransactionRepo() TransactionRepository {
	coll := database.MongoClient.Database("campuspay").Collection("payment_transactions")
	repo := &MongoTransactionRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
// The (provider, providerRef) index is unique so a provider reference can
// match at most one transaction.
func (r *MongoTransactionRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "provider", Value: 1}, {Key: "providerRef", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"providerRef": bson.M{"$exists": true}},
			),
		},
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "studentId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new transaction document.
func (r *MongoTransactionRepo) Create(txn *models.PaymentTransaction) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by its unique ID.
func (r *MongoTransactionRepo) GetByID(id string) (*models.PaymentTransaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var txn models.PaymentTransaction
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&txn); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction with id %s: %w", id, err)
	}
	return &txn, nil
}

// GetByProviderRef retrieves a transaction by its provider reference.
func (r *MongoTransactionRepo) GetByProviderRef(provider models.Provider, ref string) (*models.PaymentTransaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"provider": provider, "providerRef": ref}

	var txn models.PaymentTransaction
	if err := r.coll.FindOne(ctx, filter).Decode(&txn); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction by provider ref %s: %w", ref, err)
	}
	return &txn, nil
}

// ListBySession retrieves a session's transactions, newest first.
func (r *MongoTransactionRepo) ListBySession(sessionID string) ([]models.PaymentTransaction, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for session %s: %w", sessionID, err)
	}
	defer cursor.Close(ctx)

	var txns []models.PaymentTransaction
	for cursor.Next(ctx) {
		var t models.PaymentTransaction
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// UpdateStatusIf performs a compare-and-set status transition.
func (r *MongoTransactionRepo) UpdateStatusIf(id string, from []models.TransactionStatus, to models.TransactionStatus, set bson.M) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"status": to, "updatedAt": time.Now()}
	for k, v := range set {
		update[k] = v
	}

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": update})
	if err != nil {
		return false, fmt.Errorf("failed to update transaction %s to %s: %w", id, to, err)
	}
	return result.MatchedCount > 0, nil
}

// SetProviderRef stores the provider-assigned reference once accepted.
func (r *MongoTransactionRepo) SetProviderRef(id, ref string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"providerRef": ref, "updatedAt": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set provider ref on transaction %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("transaction with id %s not found", id)
	}
	return nil
}

// LinkPayment records the one-to-one link to the ledger entry.
func (r *MongoTransactionRepo) LinkPayment(id, paymentID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"paymentId": paymentID, "updatedAt": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to link payment on transaction %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("transaction with id %s not found", id)
	}
	return nil
}

// CancelOpenBySession cascades CANCELLED to still-open transactions.
func (r *MongoTransactionRepo) CancelOpenBySession(sessionID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"sessionId": sessionID,
		"status":    bson.M{"$in": []models.TransactionStatus{models.TxnPending, models.TxnProcessing}},
	}
	update := bson.M{"$set": bson.M{"status": models.TxnCancelled, "updatedAt": time.Now()}}

	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel open transactions for session %s: %w", sessionID, err)
	}
	return result.ModifiedCount, nil
}
