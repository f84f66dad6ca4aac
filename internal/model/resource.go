package model

type ResourceType string

const (
	Document ResourceType = "document"
	Video    ResourceType = "video"
	Link     ResourceType = "link"
	Other    ResourceType = "other"
)

// Resource 学习路径中的单个学习资源
// swagger:model Resource
type Resource struct {
	BaseModel
	LearningPathID       uint         `gorm:"index;not null" json:"learningPathId"`
	Title                string       `gorm:"size:200;not null" json:"title"`
	Description          string       `gorm:"type:text" json:"description"`
	Type                 ResourceType `gorm:"size:20;default:'document';not null" json:"type"`
	Format               string       `gorm:"size:50" json:"format"`   // 文件格式（pdf、mp4 等），链接类为 website
	URL                  string       `gorm:"size:255" json:"url"`     // 外部资源地址
	FilePath             string       `gorm:"size:255" json:"filePath"` // 上传文件的存储路径
	EstimatedTimeMinutes int          `gorm:"default:30;not null" json:"estimatedTimeMinutes"`
	Order                int          `gorm:"column:display_order;default:0;not null" json:"order"` // 路径内展示顺序
	IsRequired           bool         `gorm:"default:true;not null" json:"isRequired"`
	Metadata             string       `gorm:"type:text" json:"metadata"` // 附加元信息（作者、出版时间等），JSON 字符串
}

func (Resource) TableName() string {
	return "resources"
}
