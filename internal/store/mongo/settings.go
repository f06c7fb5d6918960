package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingsDoc struct {
	ID          int       `bson:"_id"`
	TotalTables int       `bson:"total_tables"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type SettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection(collSettings),
	}
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.RestaurantSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc settingsDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": domain.SettingsID}).Decode(&doc); err != nil {
		return nil, notFound(err, "settings")
	}

	return &domain.RestaurantSettings{
		ID:          doc.ID,
		TotalTables: doc.TotalTables,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.RestaurantSettings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	settings.ID = domain.SettingsID
	settings.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"total_tables": settings.TotalTables,
			"updated_at":   settings.UpdatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": domain.SettingsID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	return nil
}
