package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// CharacterRepository persists characters. Room membership lives here as
// the room_id field; there is no member list on the room document.
type CharacterRepository struct {
	col *mongo.Collection
}

func NewCharacterRepository(db *mongo.Database) *CharacterRepository {
	return &CharacterRepository{col: db.Collection(collectionCharacters)}
}

func (r *CharacterRepository) Create(ctx context.Context, c *domain.Character) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert character: %w", err)
	}
	return nil
}

func (r *CharacterRepository) FindByID(ctx context.Context, id string) (*domain.Character, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CharacterRepository) FindByUserID(ctx context.Context, userID string) (*domain.Character, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

// SetRoom points the character at roomID. An empty roomID means no room.
func (r *CharacterRepository) SetRoom(ctx context.Context, id, roomID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"room_id": roomID, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update character room: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCharacterNotFound
	}
	return nil
}

func (r *CharacterRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Character, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"room_id": roomID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list room members: %w", err)
	}
	var out []*domain.Character
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode room members: %w", err)
	}
	return out, nil
}

func (r *CharacterRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return 0, fmt.Errorf("count room members: %w", err)
	}
	return n, nil
}

func (r *CharacterRepository) findOne(ctx context.Context, filter bson.M) (*domain.Character, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Character
	if err := r.col.FindOne(ctx, filter).Decode(&c); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("find character: %w", err)
	}
	return &c, nil
}
