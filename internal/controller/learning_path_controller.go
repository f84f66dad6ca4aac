package controller

import (
	"errors"

	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	PathService     *service.LearningPathService
	ProgressService *service.ProgressService
}

func NewLearningPathController(pathService *service.LearningPathService, progressService *service.ProgressService) *LearningPathController {
	return &LearningPathController{PathService: pathService, ProgressService: progressService}
}

// ListPublic godoc
// @Summary 获取公开学习路径列表
// @Description 按分类、难度和关键字筛选公开学习路径
// @Tags 学习路径
// @Produce  json
// @Param   category query string false "分类"
// @Param   difficulty query string false "难度" Enums(beginner, intermediate, advanced)
// @Param   search query string false "标题或描述关键字"
// @Success 200 {object} util.Response{data=[]model.LearningPath} "成功"
// @Router /api/learning-paths [get]
func (c *LearningPathController) ListPublic(ctx *gin.Context) {
	filter := repository.PathFilter{
		Category:   ctx.Query("category"),
		Difficulty: ctx.Query("difficulty"),
		Search:     ctx.Query("search"),
	}

	paths, err := c.PathService.ListPublic(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, paths)
}

// Get godoc
// @Summary 获取学习路径详情
// @Description 返回学习路径及其按顺序排列的资源，私有路径仅创建者和管理员可见
// @Tags 学习路径
// @Produce  json
// @Param   id path int true "学习路径ID"
// @Success 200 {object} util.Response{data=service.PathDetail} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/learning-paths/{id} [get]
func (c *LearningPathController) Get(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid learning path ID")
		return
	}

	detail, err := c.PathService.Get(util.GetUserFromContext(ctx), id)
	if err != nil {
		respondPathError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// Create godoc
// @Summary 创建学习路径
// @Description 讲师或管理员创建新的学习路径
// @Tags 学习路径
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreatePathRequest true "学习路径信息"
// @Success 201 {object} util.Response{data=model.LearningPath} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/learning-paths [post]
func (c *LearningPathController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreatePathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.PathService.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, "Learning path created successfully", path)
}

// Update godoc
// @Summary 更新学习路径
// @Description 创建者或管理员更新学习路径信息
// @Tags 学习路径
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学习路径ID"
// @Param   body body service.UpdatePathRequest true "更新内容"
// @Success 200 {object} util.Response{data=model.LearningPath} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/learning-paths/{id} [put]
func (c *LearningPathController) Update(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid learning path ID")
		return
	}

	var req service.UpdatePathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.PathService.Update(util.GetUserFromContext(ctx), id, req)
	if err != nil {
		respondPathError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "Learning path updated successfully", path)
}

// Delete godoc
// @Summary 删除学习路径
// @Description 创建者或管理员删除学习路径及其全部资源和进度记录
// @Tags 学习路径
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学习路径ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/learning-paths/{id} [delete]
func (c *LearningPathController) Delete(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid learning path ID")
		return
	}

	if err := c.PathService.Delete(util.GetUserFromContext(ctx), id); err != nil {
		respondPathError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "Learning path deleted successfully", nil)
}

// ListMine godoc
// @Summary 获取我创建的学习路径
// @Description 讲师查看自己创建的全部学习路径，包含私有路径
// @Tags 学习路径
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.LearningPath} "成功"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/learning-paths/my-paths [get]
func (c *LearningPathController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	paths, err := c.PathService.ListByCreator(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, paths)
}

// Enroll godoc
// @Summary 报名学习路径
// @Description 为当前用户在路径的每个资源上初始化进度记录，重复报名不会重置已有进度
// @Tags 学习路径
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学习路径ID"
// @Success 200 {object} util.Response{data=[]model.Progress} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/learning-paths/{id}/enroll [post]
func (c *LearningPathController) Enroll(ctx *gin.Context) {
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

	records, err := c.ProgressService.Enroll(claims, id)
	if err != nil {
		respondPathError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "Enrolled successfully", records)
}

func respondPathError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx, "Learning path not found")
	case errors.Is(err, util.ErrForbidden):
		util.Forbidden(ctx, "You do not have permission to access this learning path")
	default:
		util.LogInternalError(ctx, err)
	}
}
