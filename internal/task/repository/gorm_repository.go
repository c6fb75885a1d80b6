package repository

import (
	"errors"
	"time"

	"taskpilot-backend/internal/task/domain"

	"gorm.io/gorm"
)

// priorityOrder sorts high, medium, low, then anything unexpected
const priorityOrder = "CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END"

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

// AutoMigrate creates or updates the task and subtask tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Task{}, &domain.Subtask{})
}

func orderedSubtasks(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *gormTaskRepository) Create(task *domain.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	// Subtasks are written through SubtaskRepository
	return r.db.Omit("Subtasks").Create(task).Error
}

func (r *gormTaskRepository) FindByID(id uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Preload("Subtasks", orderedSubtasks).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&domain.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormTaskRepository) FindAll(filter TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task

	query := r.db.Model(&domain.Task{}).Preload("Subtasks", orderedSubtasks)
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	err := query.Order(priorityOrder).Order("created_at DESC").Order("id DESC").Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) Update(task *domain.Task) error {
	task.UpdatedAt = time.Now()
	return r.db.Model(&domain.Task{}).Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"title":      task.Title,
			"priority":   task.Priority,
			"deadline":   task.Deadline,
			"completed":  task.Completed,
			"notes":      task.Notes,
			"updated_at": task.UpdatedAt,
		}).Error
}

func (r *gormTaskRepository) Delete(id uint) error {
	// Explicit cleanup keeps the cascade guarantee on drivers without FK enforcement
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&domain.Subtask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Task{}, "id = ?", id).Error
	})
}
