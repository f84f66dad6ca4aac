package service

import (
	"errors"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"

	"gorm.io/gorm"
)

type ResourceService struct {
	ResourceRepo *repository.ResourceRepository
	PathRepo     *repository.LearningPathRepository
	PathService  *LearningPathService
	DB           *gorm.DB
}

func NewResourceService(
	resourceRepo *repository.ResourceRepository,
	pathRepo *repository.LearningPathRepository,
	pathService *LearningPathService,
	db *gorm.DB,
) *ResourceService {
	return &ResourceService{
		ResourceRepo: resourceRepo,
		PathRepo:     pathRepo,
		PathService:  pathService,
		DB:           db,
	}
}

// CreateResourceRequest 在路径中新建资源
type CreateResourceRequest struct {
	LearningPathID       uint   `json:"learningPathId" binding:"required"`
	Title                string `json:"title" binding:"required,min=1,max=200"`
	Description          string `json:"description"`
	Type                 string `json:"type" binding:"omitempty,oneof=document video link other"`
	Format               string `json:"format"`
	URL                  string `json:"url" binding:"omitempty,url"`
	FilePath             string `json:"filePath"`
	EstimatedTimeMinutes *int   `json:"estimatedTimeMinutes" binding:"omitempty,gte=0"`
	Order                *int   `json:"order"`
	IsRequired           *bool  `json:"isRequired"`
	Metadata             string `json:"metadata"`
}

// UpdateResourceRequest 部分更新，指针为空表示不修改
type UpdateResourceRequest struct {
	Title                *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description          *string `json:"description"`
	Type                 *string `json:"type" binding:"omitempty,oneof=document video link other"`
	Format               *string `json:"format"`
	URL                  *string `json:"url" binding:"omitempty,url"`
	FilePath             *string `json:"filePath"`
	EstimatedTimeMinutes *int    `json:"estimatedTimeMinutes" binding:"omitempty,gte=0"`
	Order                *int    `json:"order"`
	IsRequired           *bool   `json:"isRequired"`
	Metadata             *string `json:"metadata"`
}

// ResourceOrder 重排序请求中的单条 (资源ID, 新顺序)
type ResourceOrder struct {
	ID    uint `json:"id" binding:"required"`
	Order int  `json:"order"`
}

func (s *ResourceService) Create(actor *util.Claims, req CreateResourceRequest) (*model.Resource, error) {
	path, err := s.PathRepo.FindByID(req.LearningPathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if !CanWritePath(actor, path) {
		return nil, util.ErrForbidden
	}

	resource := &model.Resource{
		LearningPathID:       req.LearningPathID,
		Title:                req.Title,
		Description:          req.Description,
		Type:                 model.Document,
		Format:               req.Format,
		URL:                  req.URL,
		FilePath:             req.FilePath,
		EstimatedTimeMinutes: 30,
		IsRequired:           true,
		Metadata:             req.Metadata,
	}
	if req.Type != "" {
		resource.Type = model.ResourceType(req.Type)
	}
	if req.EstimatedTimeMinutes != nil {
		resource.EstimatedTimeMinutes = *req.EstimatedTimeMinutes
	}
	if req.Order != nil {
		resource.Order = *req.Order
	}
	if req.IsRequired != nil {
		resource.IsRequired = *req.IsRequired
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resource).Error; err != nil {
			return err
		}
		return s.recomputeEstimatedTime(tx, req.LearningPathID)
	})
	if err != nil {
		return nil, err
	}

	s.PathService.invalidateCache()
	return resource, nil
}

// Get 资源详情，继承所属路径的可见性规则
func (s *ResourceService) Get(actor *util.Claims, id uint) (*model.Resource, *model.LearningPath, error) {
	resource, err := s.ResourceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrNotFound
		}
		return nil, nil, err
	}

	path, err := s.PathRepo.FindByID(resource.LearningPathID)
	if err != nil {
		return nil, nil, err
	}
	if !CanReadPath(actor, path) {
		return nil, nil, util.ErrForbidden
	}

	return resource, path, nil
}

func (s *ResourceService) List(filter repository.ResourceFilter) ([]model.Resource, error) {
	return s.ResourceRepo.FindAll(filter)
}

func (s *ResourceService) Update(actor *util.Claims, id uint, req UpdateResourceRequest) (*model.Resource, error) {
	resource, err := s.ResourceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	path, err := s.PathRepo.FindByID(resource.LearningPathID)
	if err != nil {
		return nil, err
	}
	if !CanWritePath(actor, path) {
		return nil, util.ErrForbidden
	}

	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.Description != nil {
		resource.Description = *req.Description
	}
	if req.Type != nil {
		resource.Type = model.ResourceType(*req.Type)
	}
	if req.Format != nil {
		resource.Format = *req.Format
	}
	if req.URL != nil {
		resource.URL = *req.URL
	}
	if req.FilePath != nil {
		resource.FilePath = *req.FilePath
	}
	if req.EstimatedTimeMinutes != nil {
		resource.EstimatedTimeMinutes = *req.EstimatedTimeMinutes
	}
	if req.Order != nil {
		resource.Order = *req.Order
	}
	if req.IsRequired != nil {
		resource.IsRequired = *req.IsRequired
	}
	if req.Metadata != nil {
		resource.Metadata = *req.Metadata
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(resource).Error; err != nil {
			return err
		}
		return s.recomputeEstimatedTime(tx, resource.LearningPathID)
	})
	if err != nil {
		return nil, err
	}

	s.PathService.invalidateCache()
	return resource, nil
}

// Delete 删除资源，级联清理进度记录并重算路径预计时长
func (s *ResourceService) Delete(actor *util.Claims, id uint) error {
	resource, err := s.ResourceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}

	path, err := s.PathRepo.FindByID(resource.LearningPathID)
	if err != nil {
		return err
	}
	if !CanWritePath(actor, path) {
		return util.ErrForbidden
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", id).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Resource{}, id).Error; err != nil {
			return err
		}
		return s.recomputeEstimatedTime(tx, resource.LearningPathID)
	})
	if err != nil {
		return err
	}

	s.PathService.invalidateCache()
	return nil
}

// Reorder 批量调整路径内资源顺序
func (s *ResourceService) Reorder(actor *util.Claims, learningPathID uint, orders []ResourceOrder) ([]model.Resource, error) {
	path, err := s.PathRepo.FindByID(learningPathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if !CanWritePath(actor, path) {
		return nil, util.ErrForbidden
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range orders {
			if err := s.ResourceRepo.UpdateOrder(tx, learningPathID, item.ID, item.Order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ResourceRepo.FindByPath(learningPathID)
}

// recomputeEstimatedTime 资源增删改后重算路径的 estimatedTimeHours
func (s *ResourceService) recomputeEstimatedTime(tx *gorm.DB, learningPathID uint) error {
	totalMinutes, err := s.ResourceRepo.SumEstimatedMinutes(tx, learningPathID)
	if err != nil {
		return err
	}
	return tx.Model(&model.LearningPath{}).
		Where("id = ?", learningPathID).
		Update("estimated_time_hours", float64(totalMinutes)/60).Error
}
