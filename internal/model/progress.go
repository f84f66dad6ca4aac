package model

import "time"

type ProgressStatus string

const (
	NotStarted ProgressStatus = "not_started"
	InProgress ProgressStatus = "in_progress"
	Completed  ProgressStatus = "completed"
)

// Progress 记录用户对单个资源的完成状态，(user_id, resource_id) 全局唯一
// learning_path_id 与资源所属路径冗余存储，便于按路径聚合查询
// 不使用软删除：级联删除后需允许重新创建同一 (user, resource) 记录
// swagger:model Progress
type Progress struct {
	ID                   uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	UserID               uint           `gorm:"uniqueIndex:idx_user_resource;not null" json:"userId"`
	ResourceID           uint           `gorm:"uniqueIndex:idx_user_resource;not null" json:"resourceId"`
	LearningPathID       uint           `gorm:"index;not null" json:"learningPathId"`
	Status               ProgressStatus `gorm:"size:20;default:'not_started';not null" json:"status"`
	CompletionPercentage float64        `gorm:"default:0;not null" json:"completionPercentage"`
	TimeSpentMinutes     int            `gorm:"default:0;not null" json:"timeSpentMinutes"` // 只增不减，累加存储
	LastAccessedAt       *time.Time     `json:"lastAccessedAt"`
	CompletedAt          *time.Time     `json:"completedAt"`
	Notes                string         `gorm:"type:text" json:"notes"`
}

func (Progress) TableName() string {
	return "progresses"
}
