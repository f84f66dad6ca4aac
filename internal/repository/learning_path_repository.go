package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

// PathFilter 公共路径列表的筛选条件
type PathFilter struct {
	Category   string
	Difficulty string
	Search     string
}

func (r *LearningPathRepository) Create(path *model.LearningPath) error {
	return r.DB.Create(path).Error
}

func (r *LearningPathRepository) FindByID(id uint) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.DB.Preload("Creator").First(&path, id).Error
	return &path, err
}

// FindByIDWithResources 加载路径及其全部资源（按 display_order 升序）
func (r *LearningPathRepository) FindByIDWithResources(id uint) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.DB.Preload("Creator").
		Preload("Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&path, id).Error
	return &path, err
}

func (r *LearningPathRepository) FindPublic(filter PathFilter) ([]model.LearningPath, error) {
	query := r.DB.Where("is_public = ?", true)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var paths []model.LearningPath
	err := query.Preload("Creator").
		Preload("Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order("created_at DESC").
		Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) FindByCreator(creatorID uint) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.Where("creator_id = ?", creatorID).
		Preload("Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order("created_at DESC").
		Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) FindByIDs(ids []uint) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.Preload("Creator").Where("id IN ?", ids).Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) Update(path *model.LearningPath) error {
	return r.DB.Save(path).Error
}

// Delete 删除路径并级联清理其资源与进度记录
func (r *LearningPathRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("learning_path_id = ?", id).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("learning_path_id = ?", id).Delete(&model.Resource{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.LearningPath{}, id).Error
	})
}
