package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// PurchaseRepository is the attempt log. The request id is the document
// _id, so a second Insert for the same request fails at the database.
type PurchaseRepository struct {
	col *mongo.Collection
}

func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	return &PurchaseRepository{col: db.Collection(collectionPurchases)}
}

func (r *PurchaseRepository) Insert(ctx context.Context, a *domain.PurchaseAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRequest
		}
		return fmt.Errorf("insert purchase attempt: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) FindByRequestID(ctx context.Context, requestID string) (*domain.PurchaseAttempt, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.PurchaseAttempt
	if err := r.col.FindOne(ctx, bson.M{"_id": requestID}).Decode(&a); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("find purchase attempt: %w", err)
	}
	return &a, nil
}

func (r *PurchaseRepository) Save(ctx context.Context, a *domain.PurchaseAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.RequestID}, a, opts); err != nil {
		return fmt.Errorf("save purchase attempt: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) ListByStatus(ctx context.Context, status domain.AttemptStatus) ([]*domain.PurchaseAttempt, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"status": status}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list purchase attempts: %w", err)
	}
	out := []*domain.PurchaseAttempt{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode purchase attempts: %w", err)
	}
	return out, nil
}
