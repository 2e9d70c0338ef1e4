package controller

import (
	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 课程目录的增删改查。读接口对所有角色开放，写接口仅教师和管理员。
type CatalogController struct {
	Service *service.CatalogService
}

func NewCatalogController(s *service.CatalogService) *CatalogController {
	return &CatalogController{Service: s}
}

// ---- 课程 ----

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	f, ok := listFilter(ctx, "")
	if !ok {
		return
	}
	items, total, err := c.Service.ListCourses(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, items, total, f)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	course, err := c.Service.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 创建者即课程所有者
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseInput true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	var in service.CourseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.Service.CreateCourse(ctx.Request.Context(), middleware.PrincipalFrom(ctx).UserID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseInput true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CatalogController) UpdateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var in service.CourseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.Service.UpdateCourse(ctx.Request.Context(), id, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Description 级联删除课时、测试、题目、选项和测试结果
// @Tags 课程
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CatalogController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.Service.DeleteCourse(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 课时 ----

// ListLessons godoc
// @Summary 课时列表
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query int false "课程ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/lessons [get]
func (c *CatalogController) ListLessons(ctx *gin.Context) {
	f, ok := listFilter(ctx, "courseId")
	if !ok {
		return
	}
	items, total, err := c.Service.ListLessons(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, items, total, f)
}

// GetLesson godoc
// @Summary 课时详情
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/lessons/{id} [get]
func (c *CatalogController) GetLesson(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	lesson, err := c.Service.GetLesson(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// CreateLesson godoc
// @Summary 创建课时
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.LessonInput true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/lessons [post]
func (c *CatalogController) CreateLesson(ctx *gin.Context) {
	var in service.LessonInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.Service.CreateLesson(ctx.Request.Context(), middleware.PrincipalFrom(ctx).UserID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary 更新课时
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Param body body service.LessonInput true "课时信息"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/lessons/{id} [put]
func (c *CatalogController) UpdateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var in service.LessonInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.Service.UpdateLesson(ctx.Request.Context(), id, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary 删除课时
// @Tags 课时
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id} [delete]
func (c *CatalogController) DeleteLesson(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.Service.DeleteLesson(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 测试 ----

// ListTests godoc
// @Summary 测试列表
// @Tags 测试
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId query int false "课时ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tests [get]
func (c *CatalogController) ListTests(ctx *gin.Context) {
	f, ok := listFilter(ctx, "lessonId")
	if !ok {
		return
	}
	items, total, err := c.Service.ListTests(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, items, total, f)
}

// GetTest godoc
// @Summary 测试详情
// @Description 包含全部题目和选项；学生看不到选项的正确性
// @Tags 测试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测试ID"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *CatalogController) GetTest(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	test, err := c.Service.GetTest(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !canSeeAnswerKey(ctx) {
		util.Success(ctx, service.PublicTestOf(test))
		return
	}
	util.Success(ctx, test)
}

// CreateTest godoc
// @Summary 创建测试
// @Tags 测试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.TestInput true "测试信息"
// @Success 201 {object} util.Response{data=model.Test}
// @Router /api/tests [post]
func (c *CatalogController) CreateTest(ctx *gin.Context) {
	var in service.TestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	test, err := c.Service.CreateTest(ctx.Request.Context(), middleware.PrincipalFrom(ctx).UserID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// UpdateTest godoc
// @Summary 更新测试
// @Tags 测试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测试ID"
// @Param body body service.TestInput true "测试信息"
// @Success 200 {object} util.Response{data=model.Test}
// @Router /api/tests/{id} [put]
func (c *CatalogController) UpdateTest(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var in service.TestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	test, err := c.Service.UpdateTest(ctx.Request.Context(), id, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// DeleteTest godoc
// @Summary 删除测试
// @Description 级联删除题目、选项和测试结果
// @Tags 测试
// @Security ApiKeyAuth
// @Param id path int true "测试ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id} [delete]
func (c *CatalogController) DeleteTest(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.Service.DeleteTest(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 题目 ----

// ListQuestions godoc
// @Summary 题目列表
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param testId query int false "测试ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *CatalogController) ListQuestions(ctx *gin.Context) {
	f, ok := listFilter(ctx, "testId")
	if !ok {
		return
	}
	items, total, err := c.Service.ListQuestions(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !canSeeAnswerKey(ctx) {
		page(ctx, service.PublicQuestions(items), total, f)
		return
	}
	page(ctx, items, total, f)
}

// GetQuestion godoc
// @Summary 题目详情
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [get]
func (c *CatalogController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	q, err := c.Service.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !canSeeAnswerKey(ctx) {
		util.Success(ctx, service.PublicQuestionOf(*q))
		return
	}
	util.Success(ctx, q)
}

// CreateQuestion godoc
// @Summary 创建题目
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionInput true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/questions [post]
func (c *CatalogController) CreateQuestion(ctx *gin.Context) {
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.Service.CreateQuestion(ctx.Request.Context(), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionInput true "题目信息"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [put]
func (c *CatalogController) UpdateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.Service.UpdateQuestion(ctx.Request.Context(), id, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题目
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *CatalogController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.Service.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- 选项 ----

// ListAnswers godoc
// @Summary 选项列表
// @Tags 选项
// @Produce json
// @Security ApiKeyAuth
// @Param questionId query int false "题目ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/answers [get]
func (c *CatalogController) ListAnswers(ctx *gin.Context) {
	f, ok := listFilter(ctx, "questionId")
	if !ok {
		return
	}
	items, total, err := c.Service.ListAnswers(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !canSeeAnswerKey(ctx) {
		page(ctx, service.PublicAnswers(items), total, f)
		return
	}
	page(ctx, items, total, f)
}

// GetAnswer godoc
// @Summary 选项详情
// @Tags 选项
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "选项ID"
// @Success 200 {object} util.Response{data=model.Answer}
// @Router /api/answers/{id} [get]
func (c *CatalogController) GetAnswer(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	a, err := c.Service.GetAnswer(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !canSeeAnswerKey(ctx) {
		util.Success(ctx, service.PublicAnswerOf(*a))
		return
	}
	util.Success(ctx, a)
}

// CreateAnswer godoc
// @Summary 创建选项
// @Tags 选项
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.AnswerInput true "选项信息"
// @Success 201 {object} util.Response{data=model.Answer}
// @Router /api/answers [post]
func (c *CatalogController) CreateAnswer(ctx *gin.Context) {
	var in service.AnswerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.CreateAnswer(ctx.Request.Context(), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// UpdateAnswer godoc
// @Summary 更新选项
// @Tags 选项
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "选项ID"
// @Param body body service.AnswerInput true "选项信息"
// @Success 200 {object} util.Response{data=model.Answer}
// @Router /api/answers/{id} [put]
func (c *CatalogController) UpdateAnswer(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var in service.AnswerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.UpdateAnswer(ctx.Request.Context(), id, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// DeleteAnswer godoc
// @Summary 删除选项
// @Tags 选项
// @Security ApiKeyAuth
// @Param id path int true "选项ID"
// @Success 200 {object} util.Response
// @Router /api/answers/{id} [delete]
func (c *CatalogController) DeleteAnswer(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.Service.DeleteAnswer(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
