package taskstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRecord is the GORM model for the tasks table. Timestamps are managed
// by the repository, so GORM's auto-tracking is switched off.
type taskRecord struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Title       string     `gorm:"size:100;not null"`
	Description string     `gorm:"size:500"`
	Status      string     `gorm:"size:20;not null;default:pending;index"`
	DueDate     *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false"`
}

// TableName overrides the default GORM table name.
func (taskRecord) TableName() string {
	return Collection
}

func toRecord(t *domain.Task) *taskRecord {
	return &taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *taskRecord) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// GormStore stores tasks in a SQL database through GORM.
type GormStore struct {
	db     *gorm.DB
	driver string
}

// OpenSQLite opens (or creates) a SQLite database at path and migrates it.
func OpenSQLite(path string, debug bool) (*GormStore, error) {
	store, err := openGorm(sqlite.Open(path), "sqlite", debug)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := store.db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return store, nil
}

// OpenPostgres connects to a PostgreSQL database and migrates it.
func OpenPostgres(dsn string, debug bool) (*GormStore, error) {
	return openGorm(postgres.Open(dsn), "postgres", debug)
}

// NewGormStore wraps an already opened database.
func NewGormStore(db *gorm.DB, driver string) (*GormStore, error) {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &GormStore{db: db, driver: driver}, nil
}

func openGorm(dialector gorm.Dialector, driver string, debug bool) (*GormStore, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewGormStore(db, driver)
}

// Name returns the SQL driver name.
func (s *GormStore) Name() string {
	return s.driver
}

// Insert saves a new task.
func (s *GormStore) Insert(ctx context.Context, t *domain.Task) error {
	t.ID = uuid.New().String()
	if err := s.db.WithContext(ctx).Create(toRecord(t)).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// List retrieves all tasks, newest first.
func (s *GormStore) List(ctx context.Context) ([]*domain.Task, error) {
	var records []*taskRecord
	if err := s.db.WithContext(ctx).Order("created_at desc, id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	tasks := make([]*domain.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// Get retrieves a task by its ID.
func (s *GormStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	var record taskRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return record.toDomain(), nil
}

// Replace overwrites every column of an existing task.
func (s *GormStore) Replace(ctx context.Context, t *domain.Task) error {
	result := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id = ?", t.ID).
		Select("*").
		Updates(toRecord(t))
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete permanently removes a task by ID.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
