package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type orderItemDoc struct {
	ID         string               `bson:"_id"`
	OrderID    string               `bson:"order_id"`
	MenuItemID string               `bson:"menu_item_id"`
	Name       string               `bson:"name"`
	UnitPrice  primitive.Decimal128 `bson:"unit_price"`
	Quantity   int                  `bson:"quantity"`
}

func (d orderItemDoc) domain() (domain.OrderItem, error) {
	price, err := fromDecimal128(d.UnitPrice)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("order item %s: %w", d.ID, err)
	}
	return domain.OrderItem{
		ID:         parseID(d.ID),
		OrderID:    parseID(d.OrderID),
		MenuItemID: parseID(d.MenuItemID),
		Name:       d.Name,
		UnitPrice:  price,
		Quantity:   d.Quantity,
	}, nil
}

type OrderItemRepository struct {
	collection *mongo.Collection
}

func NewOrderItemRepository(db *mongo.Database) *OrderItemRepository {
	return &OrderItemRepository{
		collection: db.Collection(collOrderItems),
	}
}

func (r *OrderItemRepository) CreateMany(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(items))
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		price, err := toDecimal128(items[i].UnitPrice)
		if err != nil {
			return err
		}
		docs = append(docs, orderItemDoc{
			ID:         items[i].ID.String(),
			OrderID:    items[i].OrderID.String(),
			MenuItemID: items[i].MenuItemID.String(),
			Name:       items[i].Name,
			UnitPrice:  price,
			Quantity:   items[i].Quantity,
		})
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	return nil
}

func (r *OrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]domain.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"order_id": bson.M{"$in": idStrings(orderIDs)}})
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(docs))
	for _, d := range docs {
		item, err := d.domain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
