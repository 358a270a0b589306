package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/playhouse/roomhub/internal/core/domain"
)

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(collectionRooms)}
}

// Create inserts a new room document.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, room); err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (r *RoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var room domain.Room
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&room); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return &room, nil
}

// Save replaces the stored room. Callers hold the room's lock.
func (r *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": room.ID}, room)
	if err != nil {
		return fmt.Errorf("save room: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) ListByStatus(ctx context.Context, status domain.RoomStatus) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	var out []*domain.Room
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return out, nil
}
