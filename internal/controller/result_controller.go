package controller

import (
	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	Service *service.ResultService
}

func NewResultController(s *service.ResultService) *ResultController {
	return &ResultController{Service: s}
}

// MyResults godoc
// @Summary 我的测试结果
// @Tags 测试结果
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/results/me [get]
func (c *ResultController) MyResults(ctx *gin.Context) {
	f, _ := listFilter(ctx, "")
	res, err := c.Service.ListMine(ctx.Request.Context(), middleware.PrincipalFrom(ctx).UserID, f.Page, f.Limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, res.Items, res.Total, f)
}

// MyTestResults godoc
// @Summary 我在某个测试上的全部提交
// @Tags 测试结果
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测试ID"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/results/me [get]
func (c *ResultController) MyTestResults(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	f, _ := listFilter(ctx, "")
	res, err := c.Service.ListMineForTest(ctx.Request.Context(), id, middleware.PrincipalFrom(ctx).UserID, f.Page, f.Limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, res.Items, res.Total, f)
}

// TestResults godoc
// @Summary 测试的全部结果
// @Description 教师和管理员查看
// @Tags 测试结果
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测试ID"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/results [get]
func (c *ResultController) TestResults(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	f, _ := listFilter(ctx, "")
	res, err := c.Service.ListForTest(ctx.Request.Context(), id, f.Page, f.Limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, res.Items, res.Total, f)
}
