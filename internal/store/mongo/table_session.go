package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tableSessionDoc struct {
	ID          string     `bson:"_id"`
	TableNumber int        `bson:"table_number"`
	Status      string     `bson:"status"`
	OpenedAt    time.Time  `bson:"opened_at"`
	ClosedAt    *time.Time `bson:"closed_at"`
}

func (d tableSessionDoc) domain() domain.TableSession {
	return domain.TableSession{
		ID:          parseID(d.ID),
		TableNumber: d.TableNumber,
		Status:      domain.SessionStatus(d.Status),
		OpenedAt:    d.OpenedAt,
		ClosedAt:    d.ClosedAt,
	}
}

type TableSessionRepository struct {
	collection *mongo.Collection
}

func NewTableSessionRepository(db *mongo.Database) *TableSessionRepository {
	return &TableSessionRepository{
		collection: db.Collection(collSessions),
	}
}

func (r *TableSessionRepository) Create(ctx context.Context, session *domain.TableSession) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now()
	}

	doc := tableSessionDoc{
		ID:          session.ID.String(),
		TableNumber: session.TableNumber,
		Status:      string(session.Status),
		OpenedAt:    session.OpenedAt,
		ClosedAt:    session.ClosedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("table %d already has an open session: %w", session.TableNumber, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create table session: %w", err)
	}

	return nil
}

func (r *TableSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TableSession, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *TableSessionRepository) FindOpenByTable(ctx context.Context, table int) (*domain.TableSession, error) {
	return r.findOne(ctx, bson.M{"table_number": table, "status": string(domain.SessionOpen)})
}

func (r *TableSessionRepository) findOne(ctx context.Context, filter bson.M) (*domain.TableSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc tableSessionDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, "table session")
	}

	s := doc.domain()
	return &s, nil
}

func (r *TableSessionRepository) ListOpen(ctx context.Context) ([]domain.TableSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "table_number", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"status": string(domain.SessionOpen)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list table sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []tableSessionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode table sessions: %w", err)
	}

	sessions := make([]domain.TableSession, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, d.domain())
	}
	return sessions, nil
}

func (r *TableSessionRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) (*domain.TableSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id.String(), "status": string(domain.SessionOpen)}
	update := bson.M{
		"$set": bson.M{
			"status":    string(domain.SessionClosed),
			"closed_at": at,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc tableSessionDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		s := doc.domain()
		return &s, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to close table session: %w", err)
	}

	// no open session matched; tell a closed one apart from a missing one
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("table session already closed: %w", domain.ErrInvalidTransition)
}
