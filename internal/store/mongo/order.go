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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderDoc struct {
	ID          string               `bson:"_id"`
	Token       string               `bson:"token"`
	Status      string               `bson:"status"`
	Total       primitive.Decimal128 `bson:"total"`
	ServiceType string               `bson:"service_type,omitempty"`
	TableNumber *int                 `bson:"table_number"`
	SessionID   *string              `bson:"session_id"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newOrderDoc(o *domain.Order) (orderDoc, error) {
	total, err := toDecimal128(o.Total)
	if err != nil {
		return orderDoc{}, err
	}
	doc := orderDoc{
		ID:          o.ID.String(),
		Token:       o.Token,
		Status:      string(o.Status),
		Total:       total,
		ServiceType: string(o.Fulfillment.Type()),
		TableNumber: o.Fulfillment.TableNumber(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.SessionID != nil {
		s := o.SessionID.String()
		doc.SessionID = &s
	}
	return doc, nil
}

func (d orderDoc) domain() (domain.Order, error) {
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", d.ID, err)
	}
	o := domain.Order{
		ID:          parseID(d.ID),
		Token:       d.Token,
		Status:      domain.OrderStatus(d.Status),
		Total:       total,
		Fulfillment: domain.FulfillmentFromRow(d.ServiceType, d.TableNumber),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.SessionID != nil {
		id := parseID(*d.SessionID)
		o.SessionID = &id
	}
	return o, nil
}

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		collection: db.Collection(collOrders),
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt

	doc, err := newOrderDoc(order)
	if err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("order: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *OrderRepository) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc orderDoc
	if err := r.collection.FindOne(ctx, bson.M{"token": token}, opts).Decode(&doc); err != nil {
		return nil, notFound(err, "order")
	}

	o, err := doc.domain()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ActiveTokenExists(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"token":  token,
		"status": bson.M{"$in": []string{string(domain.OrderCurrent), string(domain.OrderPrepared)}},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count orders: %w", err)
	}

	return count > 0, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Order, error) {
	return r.find(ctx, bson.M{"session_id": sessionID.String()})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.domain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, token string, from, to domain.OrderStatus) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"token": token, "status": string(from)}
	update := bson.M{
		"$set": bson.M{
			"status":     string(to),
			"updated_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetReturnDocument(options.After)

	var doc orderDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, notFound(err, "order")
	}

	o, err := doc.domain()
	if err != nil {
		return nil, err
	}
	return &o, nil
}
