package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/playhouse/roomhub/internal/core/domain"
)

type CatalogRepository struct {
	col *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{col: db.Collection(collectionCatalog)}
}

func (r *CatalogRepository) Create(ctx context.Context, item *domain.CatalogItem) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert catalog item: %w", err)
	}
	return nil
}

func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var item domain.CatalogItem
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find catalog item: %w", err)
	}
	return &item, nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	out := []*domain.CatalogItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return out, nil
}

// InventoryRepository stores what users own.
type InventoryRepository struct {
	col *mongo.Collection
}

func NewInventoryRepository(db *mongo.Database) *InventoryRepository {
	return &InventoryRepository{col: db.Collection(collectionInventory)}
}

// FindStack returns the user's row for a stackable item.
func (r *InventoryRepository) FindStack(ctx context.Context, userID, itemID string) (*domain.InventoryItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inv domain.InventoryItem
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID, "item_id": itemID}).Decode(&inv); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("find inventory stack: %w", err)
	}
	return &inv, nil
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

func (r *InventoryRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return fmt.Errorf("save inventory item: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

func (r *InventoryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.InventoryItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	out := []*domain.InventoryItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	return out, nil
}
