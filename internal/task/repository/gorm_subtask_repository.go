package repository

import (
	"errors"
	"math"
	"time"

	"taskpilot-backend/internal/task/domain"

	"gorm.io/gorm"
)

// ErrParentTaskNotFound is returned when a subtask references a missing task
var ErrParentTaskNotFound = errors.New("parent task not found")

type gormSubtaskRepository struct {
	db *gorm.DB
}

// NewGormSubtaskRepository creates a new GORM-based SubtaskRepository
func NewGormSubtaskRepository(db *gorm.DB) SubtaskRepository {
	return &gormSubtaskRepository{db: db}
}

func (r *gormSubtaskRepository) Create(subtask *domain.Subtask) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Task{}).Where("id = ?", subtask.TaskID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrParentTaskNotFound
		}
		now := time.Now()
		subtask.CreatedAt = now
		subtask.UpdatedAt = now
		return tx.Create(subtask).Error
	})
}

func (r *gormSubtaskRepository) FindByID(id uint) (*domain.Subtask, error) {
	var subtask domain.Subtask
	err := r.db.Where("id = ?", id).First(&subtask).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subtask, nil
}

func (r *gormSubtaskRepository) FindByTaskID(taskID uint) ([]domain.Subtask, error) {
	subtasks := []domain.Subtask{}
	err := r.db.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&subtasks).Error
	return subtasks, err
}

func (r *gormSubtaskRepository) Update(subtask *domain.Subtask) error {
	subtask.UpdatedAt = time.Now()
	return r.db.Model(&domain.Subtask{}).Where("id = ?", subtask.ID).
		Updates(map[string]interface{}{
			"text":       subtask.Text,
			"completed":  subtask.Completed,
			"updated_at": subtask.UpdatedAt,
		}).Error
}

func (r *gormSubtaskRepository) Delete(id uint) error {
	return r.db.Delete(&domain.Subtask{}, "id = ?", id).Error
}

func (r *gormSubtaskRepository) DeleteByTaskID(taskID uint, onlyIncomplete bool) (int64, error) {
	query := r.db.Where("task_id = ?", taskID)
	if onlyIncomplete {
		query = query.Where("completed = ?", false)
	}
	result := query.Delete(&domain.Subtask{})
	return result.RowsAffected, result.Error
}

func (r *gormSubtaskRepository) Stats(taskID uint) (*domain.SubtaskStats, error) {
	stats := &domain.SubtaskStats{}
	if err := r.db.Model(&domain.Subtask{}).Where("task_id = ?", taskID).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&domain.Subtask{}).Where("task_id = ? AND completed = ?", taskID, true).Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		rate := float64(stats.Completed) * 100 / float64(stats.Total)
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	return stats, nil
}
