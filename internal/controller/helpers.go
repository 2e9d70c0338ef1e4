package controller

import (
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// pathID 非法 ID 按资源不存在处理
func pathID(ctx *gin.Context) (uint, bool) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.NotFound(ctx)
		return 0, false
	}
	return id, true
}

// listFilter 读取 page/limit 以及可选的父级过滤参数
func listFilter(ctx *gin.Context, parentParam string) (repository.ListFilter, bool) {
	page, limit := util.Pagination(ctx.Query("page"), ctx.Query("limit"))
	f := repository.ListFilter{Page: page, Limit: limit}
	if parentParam == "" {
		return f, true
	}
	if raw := ctx.Query(parentParam); raw != "" {
		id, ok := util.ParseID(raw)
		if !ok {
			util.BadRequest(ctx, parentParam+" must be a positive integer")
			return f, false
		}
		f.ParentID = id
	}
	return f, true
}

func page(ctx *gin.Context, list interface{}, total int64, f repository.ListFilter) {
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: f.Page, Limit: f.Limit})
}

// canSeeAnswerKey 学生看不到选项的正确性
func canSeeAnswerKey(ctx *gin.Context) bool {
	role, ok := middleware.RoleFrom(ctx)
	return ok && role != model.Student
}
