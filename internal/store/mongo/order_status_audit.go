package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderStatusAuditDoc struct {
	ID        string    `bson:"_id"`
	OrderID   string    `bson:"order_id"`
	Token     string    `bson:"token"`
	EventType string    `bson:"event_type"`
	OldStatus string    `bson:"old_status"`
	NewStatus string    `bson:"new_status"`
	ChangedBy string    `bson:"changed_by"`
	Timestamp time.Time `bson:"timestamp"`
}

type OrderStatusAuditRepository struct {
	collection *mongo.Collection
}

func NewOrderStatusAuditRepository(db *mongo.Database) *OrderStatusAuditRepository {
	return &OrderStatusAuditRepository{
		collection: db.Collection(collAudit),
	}
}

func (r *OrderStatusAuditRepository) Create(ctx context.Context, audit *domain.OrderStatusAudit) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.Timestamp.IsZero() {
		audit.Timestamp = time.Now()
	}

	doc := orderStatusAuditDoc{
		ID:        audit.ID.String(),
		OrderID:   audit.OrderID.String(),
		Token:     audit.Token,
		EventType: audit.EventType,
		OldStatus: string(audit.OldStatus),
		NewStatus: string(audit.NewStatus),
		ChangedBy: audit.ChangedBy,
		Timestamp: audit.Timestamp,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

func (r *OrderStatusAuditRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID, limit int) ([]domain.OrderStatusAudit, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderStatusAuditDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	audits := make([]domain.OrderStatusAudit, 0, len(docs))
	for _, d := range docs {
		audits = append(audits, domain.OrderStatusAudit{
			ID:        parseID(d.ID),
			OrderID:   parseID(d.OrderID),
			Token:     d.Token,
			EventType: d.EventType,
			OldStatus: domain.OrderStatus(d.OldStatus),
			NewStatus: domain.OrderStatus(d.NewStatus),
			ChangedBy: d.ChangedBy,
			Timestamp: d.Timestamp,
		})
	}

	return audits, nil
}
