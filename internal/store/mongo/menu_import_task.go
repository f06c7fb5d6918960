package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type menuImportTaskDoc struct {
	ID            string    `bson:"_id"`
	Status        string    `bson:"status"`
	SpreadsheetID string    `bson:"spreadsheet_id"`
	SheetRange    string    `bson:"sheet_range"`
	Imported      int       `bson:"imported"`
	Skipped       int       `bson:"skipped"`
	ErrorMessage  string    `bson:"error_message,omitempty"`
	RetryCount    int       `bson:"retry_count"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

type MenuImportTaskRepository struct {
	collection *mongo.Collection
}

func NewMenuImportTaskRepository(db *mongo.Database) *MenuImportTaskRepository {
	return &MenuImportTaskRepository{
		collection: db.Collection(collImportTasks),
	}
}

func (r *MenuImportTaskRepository) Create(ctx context.Context, task *domain.MenuImportTask) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt

	doc := menuImportTaskDoc{
		ID:            task.ID.String(),
		Status:        string(task.Status),
		SpreadsheetID: task.SpreadsheetID,
		SheetRange:    task.SheetRange,
		RetryCount:    task.RetryCount,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create import task: %w", err)
	}

	return nil
}

func (r *MenuImportTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuImportTask, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc menuImportTaskDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, notFound(err, "import task")
	}

	return &domain.MenuImportTask{
		ID:            parseID(doc.ID),
		Status:        domain.ImportTaskStatus(doc.Status),
		SpreadsheetID: doc.SpreadsheetID,
		SheetRange:    doc.SheetRange,
		Imported:      doc.Imported,
		Skipped:       doc.Skipped,
		ErrorMessage:  doc.ErrorMessage,
		RetryCount:    doc.RetryCount,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

func (r *MenuImportTaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ImportTaskStatus, errorMsg string) error {
	set := bson.M{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if errorMsg != "" {
		set["error_message"] = errorMsg
	}
	return r.update(ctx, id, bson.M{"$set": set}, "failed to update import task status")
}

func (r *MenuImportTaskRepository) Complete(ctx context.Context, id uuid.UUID, imported, skipped int) error {
	update := bson.M{
		"$set": bson.M{
			"status":     string(domain.ImportCompleted),
			"imported":   imported,
			"skipped":    skipped,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{"error_message": ""},
	}
	return r.update(ctx, id, update, "failed to complete import task")
}

func (r *MenuImportTaskRepository) IncrementRetryCount(ctx context.Context, id uuid.UUID) error {
	update := bson.M{
		"$inc": bson.M{"retry_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	return r.update(ctx, id, update, "failed to increment retry count")
}

func (r *MenuImportTaskRepository) update(ctx context.Context, id uuid.UUID, update bson.M, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("import task: %w", domain.ErrNotFound)
	}

	return nil
}
