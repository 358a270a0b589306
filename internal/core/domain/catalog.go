package domain

import "time"

// CatalogItem is a product definition. Stackable items are held as a single
// inventory row with a quantity counter.
type CatalogItem struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Price     int64     `json:"price" bson:"price"`
	Stackable bool      `json:"stackable" bson:"stackable"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// InventoryItem is a user's holding of a catalog item.
type InventoryItem struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	ItemID    string    `json:"item_id" bson:"item_id"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
