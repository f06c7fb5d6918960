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

type menuItemDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Price       primitive.Decimal128 `bson:"price"`
	Description string               `bson:"description"`
	ImageURL    string               `bson:"image_url"`
	Status      string               `bson:"status"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newMenuItemDoc(item *domain.MenuItem) (menuItemDoc, error) {
	price, err := toDecimal128(item.Price)
	if err != nil {
		return menuItemDoc{}, err
	}
	return menuItemDoc{
		ID:          item.ID.String(),
		Name:        item.Name,
		Price:       price,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}, nil
}

func (d menuItemDoc) domain() (domain.MenuItem, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("menu item %s: %w", d.ID, err)
	}
	return domain.MenuItem{
		ID:          parseID(d.ID),
		Name:        d.Name,
		Price:       price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Status:      domain.MenuItemStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type MenuRepository struct {
	collection *mongo.Collection
}

func NewMenuRepository(db *mongo.Database) *MenuRepository {
	return &MenuRepository{
		collection: db.Collection(collMenuItems),
	}
}

func (r *MenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	doc, err := newMenuItemDoc(item)
	if err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	return nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc menuItemDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, notFound(err, "menu item")
	}

	item, err := doc.domain()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MenuRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}}, nil)
}

func (r *MenuRepository) List(ctx context.Context, onlyEnabled bool) ([]domain.MenuItem, error) {
	filter := bson.M{}
	if onlyEnabled {
		filter["status"] = string(domain.MenuItemEnabled)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *MenuRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []menuItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(docs))
	for _, d := range docs {
		item, err := d.domain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *MenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	price, err := toDecimal128(item.Price)
	if err != nil {
		return err
	}
	item.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":        item.Name,
			"price":       price,
			"description": item.Description,
			"image_url":   item.ImageURL,
			"status":      string(item.Status),
			"updated_at":  item.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("menu item: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *MenuRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MenuItemStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     string(status),
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update menu item status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("menu item: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *MenuRepository) UpsertByName(ctx context.Context, item *domain.MenuItem) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	price, err := toDecimal128(item.Price)
	if err != nil {
		return false, err
	}

	now := time.Now()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	update := bson.M{
		"$set": bson.M{
			"price":       price,
			"description": item.Description,
			"image_url":   item.ImageURL,
			"status":      string(item.Status),
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"_id":        item.ID.String(),
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc menuItemDoc
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"name": item.Name}, update, opts).Decode(&doc)
	if err != nil {
		return false, fmt.Errorf("failed to upsert menu item: %w", err)
	}

	stored, err := doc.domain()
	if err != nil {
		return false, err
	}
	*item = stored
	return doc.CreatedAt.Equal(doc.UpdatedAt), nil
}

func (r *MenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("menu item: %w", domain.ErrNotFound)
	}

	return nil
}
