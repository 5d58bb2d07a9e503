package sessionRepo

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

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo creates a new instance of SessionRepository using MongoDB.
func NewMongoSessionRepo() SessionRepository {
	coll := database.MongoClient.Database("campuspay").Collection("payment_sessions")
	repo := &MongoSessionRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoSessionRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new session document.
func (r *MongoSessionRepo) Create(session *models.PaymentSession) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create payment session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its unique ID.
func (r *MongoSessionRepo) GetByID(id string) (*models.PaymentSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var session models.PaymentSession
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch session with id %s: %w", id, err)
	}
	return &session, nil
}

// FindOpen retrieves a PENDING session for the (student, invoice, amount) triple.
func (r *MongoSessionRepo) FindOpen(studentID, invoiceID string, amount float64) (*models.PaymentSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"studentId": studentID,
		"amount":    amount,
		"status":    models.SessionPending,
	}
	if invoiceID != "" {
		filter["invoiceId"] = invoiceID
	} else {
		filter["invoiceId"] = bson.M{"$exists": false}
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var session models.PaymentSession
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open session for student %s: %w", studentID, err)
	}
	return &session, nil
}

// UpdateStatusIf performs a compare-and-set status transition.
func (r *MongoSessionRepo) UpdateStatusIf(id string, from []models.SessionStatus, to models.SessionStatus, set bson.M) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"status": to, "updatedAt": time.Now()}
	for k, v := range set {
		update[k] = v
	}

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": update})
	if err != nil {
		return false, fmt.Errorf("failed to update session %s to %s: %w", id, to, err)
	}
	return result.MatchedCount > 0, nil
}
