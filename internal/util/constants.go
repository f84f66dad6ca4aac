package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
var (
	AllowedDocumentExtensions = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx", ".txt"}
	AllowedVideoExtensions    = []string{".mp4", ".webm", ".avi", ".mov", ".wmv", ".mkv", ".flv"}
	AllowedImageExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".svg"}
)
