package controller

import (
	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// UpdateRoleRequest 修改角色请求
// swagger:model UpdateRoleRequest
type UpdateRoleRequest struct {
	Role model.UserRole `json:"role" binding:"required"`
}

// UpdateRole godoc
// @Summary 修改用户角色
// @Description 仅管理员可用，修改后下一次请求生效
// @Tags 管理员
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body UpdateRoleRequest true "新角色 student/teacher/admin"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "角色非法"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/role [patch]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateRole(ctx.Request.Context(), id, req.Role)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
