package controller

import (
	"errors"

	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// Upload godoc
// @Summary 上传资源文件
// @Description 上传文档或视频文件，返回存储地址、推断的资源类型和预计学习时长
// @Tags 上传
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "资源文件"
// @Success 201 {object} util.Response{data=service.UploadResult} "创建成功"
// @Failure 400 {object} util.Response "文件缺失或类型不支持"
// @Failure 401 {object} util.Response "未认证"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/uploads/resource [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}

	result, err := c.UploadService.UploadResource(ctx, file)
	if err != nil {
		if errors.Is(err, util.ErrInvalidFileType) {
			util.BadRequest(ctx, "Unsupported file type")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, "File uploaded successfully", result)
}
