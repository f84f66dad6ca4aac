package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindForUpdate 在事务内按 (user, resource) 加行锁读取，防止并发累加丢失更新
func (r *ProgressRepository) FindForUpdate(tx *gorm.DB, userID, resourceID uint) (*model.Progress, error) {
	query := tx.Where("user_id = ? AND resource_id = ?", userID, resourceID)
	// FOR UPDATE 仅 MySQL 方言支持
	if tx.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var progress model.Progress
	err := query.First(&progress).Error
	return &progress, err
}

func (r *ProgressRepository) FindByUserAndResource(userID, resourceID uint) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&progress).Error
	return &progress, err
}

func (r *ProgressRepository) FindByUserAndPath(userID, learningPathID uint) ([]model.Progress, error) {
	var records []model.Progress
	err := r.DB.Where("user_id = ? AND learning_path_id = ?", userID, learningPathID).
		Find(&records).Error
	return records, err
}

func (r *ProgressRepository) FindByUser(userID uint) ([]model.Progress, error) {
	var records []model.Progress
	err := r.DB.Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

// FindByPath 按路径取全部学员的进度记录（讲师督导视图）
func (r *ProgressRepository) FindByPath(learningPathID uint) ([]model.Progress, error) {
	var records []model.Progress
	err := r.DB.Where("learning_path_id = ?", learningPathID).Find(&records).Error
	return records, err
}
