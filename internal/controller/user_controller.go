package controller

import (
	"errors"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService     *service.UserService
	ProgressService *service.ProgressService
}

func NewUserController(userService *service.UserService, progressService *service.ProgressService) *UserController {
	return &UserController{UserService: userService, ProgressService: progressService}
}

// GetProfile godoc
// @Summary 获取当前用户资料
// @Description 返回当前登录用户的个人信息
// @Tags 用户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未认证"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "User not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary 更新当前用户资料
// @Description 更新当前登录用户的姓名和头像
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.UpdateProfileRequest true "资料更新内容"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "User not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.SuccessMessage(ctx, "Profile updated successfully", user)
}

// GetDashboard godoc
// @Summary 获取学习仪表盘
// @Description 汇总当前用户所有学习路径的进度概览
// @Tags 用户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Dashboard} "成功"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/users/dashboard [get]
func (c *UserController) GetDashboard(ctx *gin.Context) {
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

// ListUsers godoc
// @Summary 列出所有用户
// @Description 管理员查看全部用户列表
// @Tags 用户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.User} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.UserService.ListUsers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, users)
}

// swagger:model UpdateRoleRequest
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=learner instructor admin"`
}

// UpdateRole godoc
// @Summary 修改用户角色
// @Description 管理员修改指定用户的角色
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "用户ID"
// @Param   body body UpdateRoleRequest true "新角色"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/{id} [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, err := util.ParseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "Invalid user ID")
		return
	}

	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateRole(id, model.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "User not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.SuccessMessage(ctx, "User role updated successfully", user)
}
