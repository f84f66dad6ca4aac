package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	publicPathsCacheKey = "learning_paths:public"
	publicPathsCacheTTL = 5 * time.Minute
)

type LearningPathService struct {
	PathRepo     *repository.LearningPathRepository
	ResourceRepo *repository.ResourceRepository
	Redis        *redis.Client
}

func NewLearningPathService(
	pathRepo *repository.LearningPathRepository,
	resourceRepo *repository.ResourceRepository,
	rdb *redis.Client,
) *LearningPathService {
	return &LearningPathService{
		PathRepo:     pathRepo,
		ResourceRepo: resourceRepo,
		Redis:        rdb,
	}
}

// CreatePathRequest 创建学习路径
type CreatePathRequest struct {
	Title              string  `json:"title" binding:"required,min=3,max=100"`
	Description        string  `json:"description"`
	Category           string  `json:"category"`
	Difficulty         string  `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedTimeHours float64 `json:"estimatedTimeHours"`
	IsPublic           *bool   `json:"isPublic"`
	CoverImage         string  `json:"coverImage"`
}

// UpdatePathRequest 部分更新，指针为空表示不修改
type UpdatePathRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Difficulty  *string  `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	IsPublic    *bool    `json:"isPublic"`
	CoverImage  *string  `json:"coverImage"`
}

// PathDetail 路径详情附带资源分钟总数
type PathDetail struct {
	*model.LearningPath
	TotalEstimatedMinutes int `json:"totalEstimatedMinutes"`
}

func (s *LearningPathService) Create(creatorID uint, req CreatePathRequest) (*model.LearningPath, error) {
	path := &model.LearningPath{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Difficulty:         model.Intermediate,
		EstimatedTimeHours: req.EstimatedTimeHours,
		IsPublic:           true,
		CoverImage:         req.CoverImage,
		CreatorID:          creatorID,
	}
	if req.Difficulty != "" {
		path.Difficulty = model.Difficulty(req.Difficulty)
	}
	if req.IsPublic != nil {
		path.IsPublic = *req.IsPublic
	}

	if err := s.PathRepo.Create(path); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return path, nil
}

// ListPublic 公开路径列表。无筛选条件时走 Redis 缓存
func (s *LearningPathService) ListPublic(filter repository.PathFilter) ([]model.LearningPath, error) {
	cacheable := filter.Category == "" && filter.Difficulty == "" && filter.Search == ""

	if cacheable && s.Redis != nil {
		val, err := s.Redis.Get(context.Background(), publicPathsCacheKey).Result()
		if err == nil {
			var paths []model.LearningPath
			if err := json.Unmarshal([]byte(val), &paths); err == nil {
				return paths, nil
			}
		}
	}

	paths, err := s.PathRepo.FindPublic(filter)
	if err != nil {
		return nil, err
	}

	if cacheable && s.Redis != nil {
		if data, err := json.Marshal(paths); err == nil {
			if err := s.Redis.Set(context.Background(), publicPathsCacheKey, data, publicPathsCacheTTL).Err(); err != nil {
				logger.Log.Warn("Failed to cache public paths", zap.Error(err))
			}
		}
	}

	return paths, nil
}

// Get 路径详情，私有路径仅创建者/管理员可见
func (s *LearningPathService) Get(actor *util.Claims, id uint) (*PathDetail, error) {
	path, err := s.PathRepo.FindByIDWithResources(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	if !CanReadPath(actor, path) {
		return nil, util.ErrForbidden
	}

	totalMinutes := 0
	for _, resource := range path.Resources {
		totalMinutes += resource.EstimatedTimeMinutes
	}

	return &PathDetail{LearningPath: path, TotalEstimatedMinutes: totalMinutes}, nil
}

func (s *LearningPathService) ListByCreator(creatorID uint) ([]model.LearningPath, error) {
	return s.PathRepo.FindByCreator(creatorID)
}

func (s *LearningPathService) Update(actor *util.Claims, id uint, req UpdatePathRequest) (*model.LearningPath, error) {
	path, err := s.PathRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	if !CanWritePath(actor, path) {
		return nil, util.ErrForbidden
	}

	if req.Title != nil {
		path.Title = *req.Title
	}
	if req.Description != nil {
		path.Description = *req.Description
	}
	if req.Category != nil {
		path.Category = *req.Category
	}
	if req.Difficulty != nil {
		path.Difficulty = model.Difficulty(*req.Difficulty)
	}
	if req.IsPublic != nil {
		path.IsPublic = *req.IsPublic
	}
	if req.CoverImage != nil {
		path.CoverImage = *req.CoverImage
	}

	if err := s.PathRepo.Update(path); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return path, nil
}

// Delete 删除路径，级联清理资源与进度记录
func (s *LearningPathService) Delete(actor *util.Claims, id uint) error {
	path, err := s.PathRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}

	if !CanWritePath(actor, path) {
		return util.ErrForbidden
	}

	if err := s.PathRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *LearningPathService) invalidateCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), publicPathsCacheKey).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate public paths cache", zap.Error(err))
	}
}
