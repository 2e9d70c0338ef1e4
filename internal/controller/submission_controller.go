package controller

import (
	"encoding/json"

	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Service *service.SubmissionService
}

func NewSubmissionController(s *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Service: s}
}

// SubmitRequest 提交请求体
// swagger:model SubmitRequest
type SubmitRequest struct {
	// 题目ID -> 所选选项ID列表
	Answers map[string][]uint `json:"answers"`
}

// Submit godoc
// @Summary 提交测试
// @Description 仅学生可提交。每题所选选项与正确选项集合完全一致得 1 分；每次提交都会生成一条新的测试结果。
// @Tags 测试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测试ID"
// @Param body body SubmitRequest true "作答内容"
// @Success 201 {object} util.Response{data=service.SubmissionView}
// @Failure 400 {object} util.Response "提交格式错误"
// @Failure 401 {object} util.Response "未认证"
// @Failure 403 {object} util.Response "非学生角色"
// @Failure 404 {object} util.Response "测试不存在"
// @Failure 503 {object} util.Response "存储暂不可用，可重试"
// @Router /api/tests/{id}/submit [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	view, err := c.Service.Submit(ctx.Request.Context(), middleware.PrincipalFrom(ctx), service.SubmitRequest{
		TestID:  ctx.Param("id"),
		Answers: answersField(ctx),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// answersField 取出请求体中的 answers 原始 JSON；请求体无法解析时返回 nil，由服务在鉴权之后报告校验错误
func answersField(ctx *gin.Context) json.RawMessage {
	body, err := ctx.GetRawData()
	if err != nil || len(body) == 0 {
		return nil
	}
	var envelope struct {
		Answers json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return envelope.Answers
}
