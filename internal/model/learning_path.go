package model

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// LearningPath 讲师创建的学习路径，包含一组有序的资源
// swagger:model LearningPath
type LearningPath struct {
	BaseModel
	Title              string     `gorm:"size:100;not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	Category           string     `gorm:"size:100;index" json:"category"`
	Difficulty         Difficulty `gorm:"size:20;default:'intermediate';not null" json:"difficulty"`
	EstimatedTimeHours float64    `gorm:"default:0" json:"estimatedTimeHours"` // 派生值 = Σ 资源分钟数 / 60
	IsPublic           bool       `gorm:"default:true;not null" json:"isPublic"`
	CoverImage         string     `gorm:"size:255" json:"coverImage"`
	CreatorID          uint       `gorm:"index;not null" json:"creatorId"`
	Creator            *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Resources          []Resource `gorm:"foreignKey:LearningPathID" json:"resources,omitempty"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}
