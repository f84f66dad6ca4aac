package controller

import (
	"errors"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// UpdateProgressRequest 所有字段都是可选的，缺省字段保持原值
// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	Status               *string  `json:"status" binding:"omitempty,oneof=not_started in_progress completed"`
	CompletionPercentage *float64 `json:"completionPercentage" binding:"omitempty,gte=0,lte=100"`
	TimeSpentMinutes     *int     `json:"timeSpentMinutes" binding:"omitempty,gte=0"`
	Notes                *string  `json:"notes"`
}

// Upsert godoc
// @Summary 更新资源学习进度
// @Description 创建或更新当前用户在指定资源上的进度，状态与完成百分比自动保持一致，学习时长累加
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   resourceId path int true "资源ID"
// @Param   body body UpdateProgressRequest true "进度更新内容"
// @Success 200 {object} util.Response{data=model.Progress} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "资源不存在"
// @Failure 409 {object} util.Response "并发创建冲突"
// @Router /api/progress/resource/{resourceId} [put]
func (c *ProgressController) Upsert(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resourceID, err := util.ParseUintParam(ctx, "resourceId")
	if err != nil {
		util.BadRequest(ctx, "Invalid resource ID")
		return
	}

	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	patch := service.ProgressPatch{
		CompletionPercentage: req.CompletionPercentage,
		TimeSpentMinutes:     req.TimeSpentMinutes,
		Notes:                req.Notes,
	}
	if req.Status != nil {
		status := model.ProgressStatus(*req.Status)
		patch.Status = &status
	}

	progress, err := c.ProgressService.Upsert(claims, claims.UserID, resourceID, patch)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx, "Resource not found")
		case errors.Is(err, util.ErrForbidden):
			util.Forbidden(ctx, "You do not have permission to access this resource")
		case errors.Is(err, util.ErrConflict):
			util.Conflict(ctx, "Progress record was created concurrently, please retry")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.SuccessMessage(ctx, "Progress updated successfully", progress)
}

// GetDashboard godoc
// @Summary 获取进度总览
// @Description 返回当前用户所有学习路径的进度汇总
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Dashboard} "成功"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/progress [get]
func (c *ProgressController) GetDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.ProgressService.GetDashboard(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// GetPathProgress godoc
// @Summary 获取单个学习路径的进度
// @Description 返回当前用户在某路径下每个资源的进度及整体完成率，未开始的资源不会生成进度记录
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学习路径ID"
// @Success 200 {object} util.Response{data=service.PathProgress} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/progress/learning-path/{id} [get]
func (c *ProgressController) GetPathProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid learning path ID")
		return
	}

	progress, err := c.ProgressService.GetPathProgress(claims, id)
	if err != nil {
		respondPathError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// GetInstructorPathProgress godoc
// @Summary 查看学员进度
// @Description 路径创建者或管理员查看所有学员在该路径上的进度
// @Tags 进度
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学习路径ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/progress/instructor/learning-path/{id} [get]
func (c *ProgressController) GetInstructorPathProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid learning path ID")
		return
	}

	path, students, err := c.ProgressService.GetInstructorPathProgress(claims, id)
	if err != nil {
		respondPathError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"learningPath": path,
		"students":     students,
	})
}
