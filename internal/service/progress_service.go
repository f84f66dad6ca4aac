package service

import (
	"errors"
	"time"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressService 进度引擎：维护每个 (user, resource) 的进度记录，
// 并在路径和看板两个粒度上计算派生统计
type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	ResourceRepo *repository.ResourceRepository
	PathRepo     *repository.LearningPathRepository
	UserRepo     *repository.UserRepository
	DB           *gorm.DB
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	resourceRepo *repository.ResourceRepository,
	pathRepo *repository.LearningPathRepository,
	userRepo *repository.UserRepository,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		ResourceRepo: resourceRepo,
		PathRepo:     pathRepo,
		UserRepo:     userRepo,
		DB:           db,
	}
}

// ProgressPatch 单次进度更新，未提供的字段保持原值
// TimeSpentMinutes 是增量：累加到已存储的值上，而非覆盖
type ProgressPatch struct {
	Status               *model.ProgressStatus
	CompletionPercentage *float64
	TimeSpentMinutes     *int
	Notes                *string
}

// ProgressState 对外展示的进度字段
type ProgressState struct {
	Status               model.ProgressStatus `json:"status"`
	CompletionPercentage float64              `json:"completionPercentage"`
	TimeSpentMinutes     int                  `json:"timeSpentMinutes"`
	LastAccessedAt       *time.Time           `json:"lastAccessedAt"`
	CompletedAt          *time.Time           `json:"completedAt"`
	Notes                string               `json:"notes,omitempty"`
}

func progressState(p *model.Progress) *ProgressState {
	return &ProgressState{
		Status:               p.Status,
		CompletionPercentage: p.CompletionPercentage,
		TimeSpentMinutes:     p.TimeSpentMinutes,
		LastAccessedAt:       p.LastAccessedAt,
		CompletedAt:          p.CompletedAt,
		Notes:                p.Notes,
	}
}

// ResourceProgress 资源与调用者在该资源上的进度，progress 为空表示尚未产生记录
type ResourceProgress struct {
	Resource model.Resource `json:"resource"`
	Progress *ProgressState `json:"progress"`
}

// PathStats 路径粒度统计。overallCompletionPercentage 是
// 已完成资源数 / 资源总数 的离散比值，而非各条完成百分比的平均：
// 一个进行到 40% 的资源在到达 completed 之前对分子贡献为 0
type PathStats struct {
	TotalResources              int     `json:"totalResources"`
	CompletedResources          int     `json:"completedResources"`
	InProgressResources         int     `json:"inProgressResources"`
	TotalTimeSpent              int     `json:"totalTimeSpent"`
	OverallCompletionPercentage float64 `json:"overallCompletionPercentage"`
}

// PathProgress 单条路径的进度详情
type PathProgress struct {
	LearningPath *model.LearningPath `json:"learningPath"`
	Resources    []ResourceProgress  `json:"resources"`
	Stats        PathStats           `json:"stats"`
}

// PathSummary 看板中每条路径的聚合行
type PathSummary struct {
	LearningPath *model.LearningPath `json:"learningPath"`
	PathStats
}

// Dashboard 用户全量看板。路径是否计入 completed/inProgress 桶由
// 聚合百分比决定，两者都不满足的路径仅计入 totalPaths
type Dashboard struct {
	TotalPaths      int           `json:"totalPaths"`
	CompletedPaths  int           `json:"completedPaths"`
	InProgressPaths int           `json:"inProgressPaths"`
	TotalTimeSpent  int           `json:"totalTimeSpent"`
	Progress        []PathSummary `json:"progress"`
}

// UserPathProgress 讲师督导视图中单个学员的聚合行
type UserPathProgress struct {
	User      model.PublicUser   `json:"user"`
	Resources []ResourceProgress `json:"resources"`
	PathStats
}

// Upsert 更新（或首次创建）ownerID 对某资源的进度
// CanWriteProgress 是唯一的写授权口径：只有记录所属用户本人可写，管理员也不例外
// 字段协调顺序（任一字段都能驱动另一字段）：
//  1. status=completed 时强制 completionPercentage=100，首次进入 completed 时写入 completedAt
//  2. 否则按 completionPercentage 推导状态：100 → completed，(0,100) → in_progress
//  3. timeSpentMinutes 为增量累加
//  4. notes 原样替换
//  5. lastAccessedAt 在任何成功的更新上都会刷新
func (s *ProgressService) Upsert(actor *util.Claims, ownerID uint, resourceID uint, patch ProgressPatch) (*model.Progress, error) {
	if !CanWriteProgress(actor, ownerID) {
		return nil, util.ErrForbidden
	}

	resource, err := s.ResourceRepo.FindByID(resourceID)
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
	if !CanReadPath(actor, path) {
		return nil, util.ErrForbidden
	}

	var progress *model.Progress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progress, err = s.ProgressRepo.FindForUpdate(tx, ownerID, resourceID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = &model.Progress{
				UserID:         ownerID,
				ResourceID:     resourceID,
				LearningPathID: resource.LearningPathID,
				Status:         model.NotStarted,
			}
			if err := tx.Create(progress).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return util.ErrConflict
				}
				return err
			}
		} else if err != nil {
			return err
		}

		now := time.Now()

		if patch.Status != nil {
			progress.Status = *patch.Status
			if *patch.Status == model.Completed {
				progress.CompletionPercentage = 100
				if progress.CompletedAt == nil {
					progress.CompletedAt = &now
				}
			}
		}

		if patch.CompletionPercentage != nil {
			pct := *patch.CompletionPercentage
			progress.CompletionPercentage = pct
			if pct == 100 && progress.Status != model.Completed {
				progress.Status = model.Completed
				if progress.CompletedAt == nil {
					progress.CompletedAt = &now
				}
			} else if pct > 0 && pct < 100 {
				progress.Status = model.InProgress
			}
		}

		if patch.TimeSpentMinutes != nil {
			progress.TimeSpentMinutes += *patch.TimeSpentMinutes
		}

		if patch.Notes != nil {
			progress.Notes = *patch.Notes
		}

		progress.LastAccessedAt = &now

		return tx.Save(progress).Error
	})
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// Enroll 为路径内所有资源补齐默认进度记录，幂等：
// 已有记录的 (user, resource) 不会重复创建，重复调用只为新增资源建档
func (s *ProgressService) Enroll(actor *util.Claims, learningPathID uint) ([]model.Progress, error) {
	path, err := s.PathRepo.FindByIDWithResources(learningPathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if !CanReadPath(actor, path) {
		return nil, util.ErrForbidden
	}

	existing, err := s.ProgressRepo.FindByUserAndPath(actor.UserID, learningPathID)
	if err != nil {
		return nil, err
	}
	covered := make(map[uint]bool, len(existing))
	for _, p := range existing {
		covered[p.ResourceID] = true
	}

	var created []model.Progress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, resource := range path.Resources {
			if covered[resource.ID] {
				continue
			}
			progress := model.Progress{
				UserID:         actor.UserID,
				ResourceID:     resource.ID,
				LearningPathID: learningPathID,
				Status:         model.NotStarted,
			}
			if err := tx.Create(&progress).Error; err != nil {
				// 并发注册时另一请求可能已建档，视同已存在
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return err
			}
			created = append(created, progress)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetPathProgress 聚合调用者在某路径上的进度
// 没有记录的资源按隐式 not_started/0%/0 分钟参与统计，不落库
func (s *ProgressService) GetPathProgress(actor *util.Claims, learningPathID uint) (*PathProgress, error) {
	path, err := s.PathRepo.FindByIDWithResources(learningPathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if !CanReadPath(actor, path) {
		return nil, util.ErrForbidden
	}

	records, err := s.ProgressRepo.FindByUserAndPath(actor.UserID, learningPathID)
	if err != nil {
		return nil, err
	}
	byResource := make(map[uint]*model.Progress, len(records))
	for i := range records {
		byResource[records[i].ResourceID] = &records[i]
	}

	result := &PathProgress{LearningPath: path}
	result.Stats.TotalResources = len(path.Resources)

	for _, resource := range path.Resources {
		entry := ResourceProgress{Resource: resource}
		if p, ok := byResource[resource.ID]; ok {
			entry.Progress = progressState(p)
			result.Stats.TotalTimeSpent += p.TimeSpentMinutes
			switch p.Status {
			case model.Completed:
				result.Stats.CompletedResources++
			case model.InProgress:
				result.Stats.InProgressResources++
			}
		}
		result.Resources = append(result.Resources, entry)
	}

	result.Stats.OverallCompletionPercentage = completionRatio(
		result.Stats.CompletedResources, result.Stats.TotalResources)

	return result, nil
}

// GetDashboard 按路径分组聚合用户的全部进度记录
// 注册关系由存在进度记录隐式表达：没有任何记录的路径不会出现
func (s *ProgressService) GetDashboard(userID uint) (*Dashboard, error) {
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	byPath := make(map[uint]*PathSummary)
	var pathIDs []uint
	for _, record := range records {
		summary, ok := byPath[record.LearningPathID]
		if !ok {
			summary = &PathSummary{}
			byPath[record.LearningPathID] = summary
			pathIDs = append(pathIDs, record.LearningPathID)
		}
		summary.TotalResources++
		summary.TotalTimeSpent += record.TimeSpentMinutes
		switch record.Status {
		case model.Completed:
			summary.CompletedResources++
		case model.InProgress:
			summary.InProgressResources++
		}
	}

	paths, err := s.PathRepo.FindByIDs(pathIDs)
	if err != nil {
		return nil, err
	}
	pathByID := make(map[uint]*model.LearningPath, len(paths))
	for i := range paths {
		pathByID[paths[i].ID] = &paths[i]
	}

	dashboard := &Dashboard{Progress: []PathSummary{}}
	for _, id := range pathIDs {
		summary := byPath[id]
		summary.LearningPath = pathByID[id]
		summary.OverallCompletionPercentage = completionRatio(
			summary.CompletedResources, summary.TotalResources)

		dashboard.TotalPaths++
		dashboard.TotalTimeSpent += summary.TotalTimeSpent
		if summary.OverallCompletionPercentage == 100 {
			dashboard.CompletedPaths++
		} else if summary.OverallCompletionPercentage > 0 {
			dashboard.InProgressPaths++
		}
		dashboard.Progress = append(dashboard.Progress, *summary)
	}

	return dashboard, nil
}

// GetInstructorPathProgress 讲师督导视图：某路径下全部学员的进度聚合
// totalResources 取路径的资源总数，而非该学员已有记录数
func (s *ProgressService) GetInstructorPathProgress(actor *util.Claims, learningPathID uint) (*model.LearningPath, []UserPathProgress, error) {
	path, err := s.PathRepo.FindByIDWithResources(learningPathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrNotFound
		}
		return nil, nil, err
	}
	// 读取的是他人的进度记录：ownerID 取 0（不存在的用户），
	// 判定退化为“创建者或管理员”
	if !CanReadProgressOf(actor, 0, path) {
		return nil, nil, util.ErrForbidden
	}

	records, err := s.ProgressRepo.FindByPath(learningPathID)
	if err != nil {
		return nil, nil, err
	}

	resourceByID := make(map[uint]model.Resource, len(path.Resources))
	for _, resource := range path.Resources {
		resourceByID[resource.ID] = resource
	}

	byUser := make(map[uint]*UserPathProgress)
	var userIDs []uint
	for i := range records {
		record := &records[i]
		entry, ok := byUser[record.UserID]
		if !ok {
			entry = &UserPathProgress{}
			entry.TotalResources = len(path.Resources)
			byUser[record.UserID] = entry
			userIDs = append(userIDs, record.UserID)
		}
		if resource, ok := resourceByID[record.ResourceID]; ok {
			entry.Resources = append(entry.Resources, ResourceProgress{
				Resource: resource,
				Progress: progressState(record),
			})
		}
		entry.TotalTimeSpent += record.TimeSpentMinutes
		switch record.Status {
		case model.Completed:
			entry.CompletedResources++
		case model.InProgress:
			entry.InProgressResources++
		}
	}

	users, err := s.UserRepo.FindByIDs(userIDs)
	if err != nil {
		return nil, nil, err
	}
	userByID := make(map[uint]*model.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}

	result := make([]UserPathProgress, 0, len(userIDs))
	for _, id := range userIDs {
		entry := byUser[id]
		if user, ok := userByID[id]; ok {
			entry.User = user.Public()
		}
		entry.OverallCompletionPercentage = completionRatio(
			entry.CompletedResources, entry.TotalResources)
		result = append(result, *entry)
	}

	return path, result, nil
}

// completionRatio 离散完成率，资源数为 0 时定义为 0 而非 NaN
func completionRatio(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
