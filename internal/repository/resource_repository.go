package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

// ResourceFilter 资源列表筛选条件（讲师视图）
type ResourceFilter struct {
	Type           string
	Format         string
	Search         string
	LearningPathID uint
}

func (r *ResourceRepository) Create(resource *model.Resource) error {
	return r.DB.Create(resource).Error
}

func (r *ResourceRepository) FindByID(id uint) (*model.Resource, error) {
	var resource model.Resource
	err := r.DB.First(&resource, id).Error
	return &resource, err
}

func (r *ResourceRepository) FindByPath(learningPathID uint) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.Where("learning_path_id = ?", learningPathID).
		Order("display_order ASC").
		Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) FindAll(filter ResourceFilter) ([]model.Resource, error) {
	query := r.DB.Model(&model.Resource{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Format != "" {
		query = query.Where("format = ?", filter.Format)
	}
	if filter.LearningPathID != 0 {
		query = query.Where("learning_path_id = ?", filter.LearningPathID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var resources []model.Resource
	err := query.Order("created_at DESC").Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) Update(resource *model.Resource) error {
	return r.DB.Save(resource).Error
}

// Delete 删除资源并级联清理其进度记录
func (r *ResourceRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", id).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Resource{}, id).Error
	})
}

// UpdateOrder 仅更新指定路径内某个资源的展示顺序
func (r *ResourceRepository) UpdateOrder(tx *gorm.DB, learningPathID, resourceID uint, order int) error {
	return tx.Model(&model.Resource{}).
		Where("id = ? AND learning_path_id = ?", resourceID, learningPathID).
		Update("display_order", order).Error
}

// SumEstimatedMinutes 统计路径下所有资源的预计学习分钟数
func (r *ResourceRepository) SumEstimatedMinutes(tx *gorm.DB, learningPathID uint) (int64, error) {
	var total int64
	err := tx.Model(&model.Resource{}).
		Where("learning_path_id = ?", learningPathID).
		Select("COALESCE(SUM(estimated_time_minutes), 0)").
		Scan(&total).Error
	return total, err
}
