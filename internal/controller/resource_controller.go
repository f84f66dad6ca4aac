package controller

import (
	"errors"

	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResourceController struct {
	ResourceService *service.ResourceService
}

func NewResourceController(resourceService *service.ResourceService) *ResourceController {
	return &ResourceController{ResourceService: resourceService}
}

// List godoc
// @Summary 获取资源列表
// @Description 按学习路径和类型筛选资源
// @Tags 资源
// @Produce  json
// @Param   learningPathId query int false "学习路径ID"
// @Param   type query string false "资源类型" Enums(document, video, link, other)
// @Success 200 {object} util.Response{data=[]model.Resource} "成功"
// @Router /api/resources [get]
func (c *ResourceController) List(ctx *gin.Context) {
	filter := repository.ResourceFilter{
		LearningPathID: util.MustParseUint(ctx.Query("learningPathId")),
		Type:           ctx.Query("type"),
	}

	resources, err := c.ResourceService.List(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resources)
}

// Get godoc
// @Summary 获取资源详情
// @Description 返回资源信息，私有路径下的资源仅创建者和管理员可见
// @Tags 资源
// @Produce  json
// @Param   id path int true "资源ID"
// @Success 200 {object} util.Response{data=model.Resource} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "资源不存在"
// @Router /api/resources/{id} [get]
func (c *ResourceController) Get(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid resource ID")
		return
	}

	resource, _, err := c.ResourceService.Get(util.GetUserFromContext(ctx), id)
	if err != nil {
		respondResourceError(ctx, err)
		return
	}

	util.Success(ctx, resource)
}

// Create godoc
// @Summary 创建资源
// @Description 在学习路径中添加新资源，仅路径创建者和管理员可操作
// @Tags 资源
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateResourceRequest true "资源信息"
// @Success 201 {object} util.Response{data=model.Resource} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/resources [post]
func (c *ResourceController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.ResourceService.Create(claims, req)
	if err != nil {
		respondResourceError(ctx, err)
		return
	}

	util.Created(ctx, "Resource created successfully", resource)
}

// Update godoc
// @Summary 更新资源
// @Description 更新资源信息并重算所属路径的预计学习时长
// @Tags 资源
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "资源ID"
// @Param   body body service.UpdateResourceRequest true "更新内容"
// @Success 200 {object} util.Response{data=model.Resource} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "资源不存在"
// @Router /api/resources/{id} [put]
func (c *ResourceController) Update(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid resource ID")
		return
	}

	var req service.UpdateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.ResourceService.Update(util.GetUserFromContext(ctx), id, req)
	if err != nil {
		respondResourceError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "Resource updated successfully", resource)
}

// Delete godoc
// @Summary 删除资源
// @Description 删除资源及其关联的进度记录
// @Tags 资源
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "资源ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "资源不存在"
// @Router /api/resources/{id} [delete]
func (c *ResourceController) Delete(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid resource ID")
		return
	}

	if err := c.ResourceService.Delete(util.GetUserFromContext(ctx), id); err != nil {
		respondResourceError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "Resource deleted successfully", nil)
}

// swagger:model ReorderRequest
type ReorderRequest struct {
	Resources []service.ResourceOrder `json:"resources" binding:"required,min=1,dive"`
}

// Reorder godoc
// @Summary 调整资源顺序
// @Description 批量更新学习路径中资源的显示顺序
// @Tags 资源
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "学习路径ID"
// @Param   body body ReorderRequest true "资源顺序列表"
// @Success 200 {object} util.Response{data=[]model.Resource} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "学习路径不存在"
// @Router /api/resources/reorder/{id} [put]
func (c *ResourceController) Reorder(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid learning path ID")
		return
	}

	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resources, err := c.ResourceService.Reorder(util.GetUserFromContext(ctx), id, req.Resources)
	if err != nil {
		respondResourceError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "Resources reordered successfully", resources)
}

func respondResourceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx, "Resource not found")
	case errors.Is(err, util.ErrForbidden):
		util.Forbidden(ctx, "You do not have permission to modify this resource")
	default:
		util.LogInternalError(ctx, err)
	}
}
