package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MenuSource reads menu rows from an external spreadsheet.
type MenuSource interface {
	ParseMenuItems(ctx context.Context, spreadsheetID, sheetRange string) ([]domain.MenuItem, int, error)
}

type ImportService struct {
	taskRepo repo.MenuImportTaskRepository
	menuRepo repo.MenuRepository
	source   MenuSource
	broker   queue.Broker
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

// NewImportService builds the import service. A nil source disables imports.
func NewImportService(
	taskRepo repo.MenuImportTaskRepository,
	menuRepo repo.MenuRepository,
	source MenuSource,
	broker queue.Broker,
	notifier notify.Notifier,
	logger *zap.SugaredLogger,
) *ImportService {
	return &ImportService{
		taskRepo: taskRepo,
		menuRepo: menuRepo,
		source:   source,
		broker:   broker,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *ImportService) Enabled() bool {
	return s.source != nil
}

func (s *ImportService) CreateImportTask(ctx context.Context, spreadsheetID, sheetRange string) (*domain.MenuImportTask, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("menu import needs google credentials: %w", domain.ErrUnavailable)
	}

	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, domain.NewValidationError("spreadsheet_id", "is required")
	}

	task := &domain.MenuImportTask{
		Status:        domain.ImportQueued,
		SpreadsheetID: spreadsheetID,
		SheetRange:    strings.TrimSpace(sheetRange),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create import task: %w", err)
	}

	message := domain.MenuImportMessage{
		TaskID:        task.ID.String(),
		SpreadsheetID: task.SpreadsheetID,
		SheetRange:    task.SheetRange,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := s.broker.Publish(ctx, queue.QueueMenuImport, messageBytes); err != nil {
		_ = s.taskRepo.UpdateStatus(ctx, task.ID, domain.ImportFailed, err.Error())
		return nil, fmt.Errorf("failed to publish message: %w", err)
	}

	s.logger.Infow("menu import task created", "task_id", task.ID, "spreadsheet_id", spreadsheetID)

	return s.taskRepo.GetByID(ctx, task.ID)
}

func (s *ImportService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.MenuImportTask, error) {
	return s.taskRepo.GetByID(ctx, taskID)
}

// ProcessImportTask reads the sheet and upserts its rows by name. A failed attempt
// marks the task failed and returns the error so the broker retries it.
func (s *ImportService) ProcessImportTask(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	if task.Status == domain.ImportCompleted {
		s.logger.Infow("menu import task already completed", "task_id", taskID)
		return nil
	}

	if err := s.taskRepo.UpdateStatus(ctx, taskID, domain.ImportProcessing, ""); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	s.logger.Infow("processing menu import task", "task_id", taskID)

	if !s.Enabled() {
		_ = s.taskRepo.UpdateStatus(ctx, taskID, domain.ImportFailed, "menu import is not configured")
		return fmt.Errorf("menu import needs google credentials: %w", domain.ErrUnavailable)
	}

	items, skipped, err := s.source.ParseMenuItems(ctx, task.SpreadsheetID, task.SheetRange)
	if err != nil {
		s.fail(ctx, taskID, err)
		return fmt.Errorf("failed to parse menu: %w", err)
	}

	imported := 0
	for i := range items {
		if _, err := s.menuRepo.UpsertByName(ctx, &items[i]); err != nil {
			s.fail(ctx, taskID, err)
			return fmt.Errorf("failed to save menu item %q: %w", items[i].Name, err)
		}
		imported++
	}

	if err := s.taskRepo.Complete(ctx, taskID, imported, skipped); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if imported > 0 {
		s.notifier.Changed(ctx, domain.TableMenuItems, domain.ChangeUpdate)
	}

	s.logger.Infow("menu import task completed", "task_id", taskID, "imported", imported, "skipped", skipped)

	return nil
}

func (s *ImportService) fail(ctx context.Context, taskID uuid.UUID, cause error) {
	s.logger.Errorw("menu import failed", "task_id", taskID, "error", cause)
	_ = s.taskRepo.IncrementRetryCount(ctx, taskID)
	_ = s.taskRepo.UpdateStatus(ctx, taskID, domain.ImportFailed, cause.Error())
}
