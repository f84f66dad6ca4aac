package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"

	"go.uber.org/zap"
)

type UploadService struct {
	StorageService *StorageService
	Cfg            *config.Config
}

func NewUploadService(storageService *StorageService, cfg *config.Config) *UploadService {
	return &UploadService{StorageService: storageService, Cfg: cfg}
}

// UploadResult 上传结果，附带根据文件内容推断的资源元信息
type UploadResult struct {
	URL                  string             `json:"url"`
	FilePath             string             `json:"filePath"`
	OriginalName         string             `json:"originalName"`
	Size                 int64              `json:"size"`
	Type                 model.ResourceType `json:"type"`
	Format               string             `json:"format"`
	EstimatedTimeMinutes int                `json:"estimatedTimeMinutes"`
}

// UploadResource 保存上传文件并推断资源类型与预计学习时长。
// 文档按大小估算阅读时间，视频用 ffmpeg 探测实际时长。
func (s *UploadService) UploadResource(ctx context.Context, file *multipart.FileHeader) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))

	resourceType := model.Other
	switch {
	case util.HasExtension(ext, util.AllowedDocumentExtensions):
		resourceType = model.Document
	case util.HasExtension(ext, util.AllowedVideoExtensions):
		resourceType = model.Video
	case util.HasExtension(ext, util.AllowedImageExtensions):
		resourceType = model.Other
	default:
		return nil, util.ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	filename := "resources/" + time.Now().Format("20060102150405") + "_" +
		util.GenerateRandomString(6) + ext

	result := &UploadResult{
		FilePath:             filename,
		OriginalName:         file.Filename,
		Size:                 file.Size,
		Type:                 resourceType,
		Format:               strings.TrimPrefix(ext, "."),
		EstimatedTimeMinutes: 30,
	}

	if resourceType == model.Video {
		// 视频先落到临时文件，探测时长后再上传
		url, duration, err := s.uploadVideo(ctx, file, src, filename)
		if err != nil {
			return nil, err
		}
		result.URL = url
		if duration > 0 {
			result.EstimatedTimeMinutes = int(math.Ceil(duration / 60))
		}
		return result, nil
	}

	if resourceType == model.Document {
		// 粗略估算：每MB约10页，每页2分钟
		sizeMB := float64(file.Size) / (1024 * 1024)
		minutes := int(math.Ceil(sizeMB * 10 * 2))
		if minutes < 5 {
			minutes = 5
		}
		result.EstimatedTimeMinutes = minutes
	}

	url, err := s.StorageService.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	result.URL = url
	return result, nil
}

func (s *UploadService) uploadVideo(ctx context.Context, file *multipart.FileHeader, src multipart.File, filename string) (string, float64, error) {
	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", 0, err
	}

	ext := filepath.Ext(file.Filename)
	tempPath := filepath.Join(tempDir, fmt.Sprintf("temp_video_%d%s", time.Now().UnixNano(), ext))
	defer os.Remove(tempPath)

	dst, err := os.Create(tempPath)
	if err != nil {
		return "", 0, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", 0, err
	}
	dst.Close()

	duration := 0.0
	if info, err := util.GetVideoInfo(tempPath); err != nil {
		// 探测失败不阻塞上传，回退到默认时长
		logger.Log.Warn("视频时长探测失败", zap.String("file", file.Filename), zap.Error(err))
	} else {
		duration = info.Duration
	}

	url, err := s.StorageService.UploadFile(ctx, filename, tempPath, file.Header.Get("Content-Type"))
	if err != nil {
		return "", 0, err
	}
	return url, duration, nil
}
