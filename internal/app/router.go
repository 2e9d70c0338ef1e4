package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由，角色每次请求从用户表读取
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ResolveRole(s.roles))
	{
		authGroup.GET("/profile", c.auth.Profile)

		// 课程目录：所有角色可读
		a.registerCatalogReadRoutes(authGroup, c)

		// 学生提交与成绩
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)

		// 管理员相关接口
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerCatalogReadRoutes(r *gin.RouterGroup, c *controllers) {
	read := r.Group("", middleware.RoleMiddleware(model.Student, model.Teacher))
	{
		read.GET("/courses", c.catalog.ListCourses)
		read.GET("/courses/:id", c.catalog.GetCourse)
		read.GET("/lessons", c.catalog.ListLessons)
		read.GET("/lessons/:id", c.catalog.GetLesson)
		read.GET("/tests", c.catalog.ListTests)
		read.GET("/tests/:id", c.catalog.GetTest)
		read.GET("/questions", c.catalog.ListQuestions)
		read.GET("/questions/:id", c.catalog.GetQuestion)
		read.GET("/answers", c.catalog.ListAnswers)
		read.GET("/answers/:id", c.catalog.GetAnswer)
	}
}

func (a *App) registerStudentRoutes(r *gin.RouterGroup, c *controllers) {
	// 提交的角色校验在服务内完成，管理员和教师都会被拒绝
	r.POST("/tests/:id/submit", c.submission.Submit)

	student := r.Group("", middleware.RoleMiddleware(model.Student))
	{
		student.GET("/results/me", c.result.MyResults)
		student.GET("/tests/:id/results/me", c.result.MyTestResults)
	}
}

func (a *App) registerTeacherRoutes(r *gin.RouterGroup, c *controllers) {
	teacher := r.Group("", middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses", c.catalog.CreateCourse)
		teacher.PUT("/courses/:id", c.catalog.UpdateCourse)
		teacher.DELETE("/courses/:id", c.catalog.DeleteCourse)

		teacher.POST("/lessons", c.catalog.CreateLesson)
		teacher.PUT("/lessons/:id", c.catalog.UpdateLesson)
		teacher.DELETE("/lessons/:id", c.catalog.DeleteLesson)

		teacher.POST("/tests", c.catalog.CreateTest)
		teacher.PUT("/tests/:id", c.catalog.UpdateTest)
		teacher.DELETE("/tests/:id", c.catalog.DeleteTest)
		teacher.GET("/tests/:id/results", c.result.TestResults)

		teacher.POST("/questions", c.catalog.CreateQuestion)
		teacher.PUT("/questions/:id", c.catalog.UpdateQuestion)
		teacher.DELETE("/questions/:id", c.catalog.DeleteQuestion)

		teacher.POST("/answers", c.catalog.CreateAnswer)
		teacher.PUT("/answers/:id", c.catalog.UpdateAnswer)
		teacher.DELETE("/answers/:id", c.catalog.DeleteAnswer)
	}
}

func (a *App) registerAdminRoutes(r *gin.RouterGroup, c *controllers) {
	admin := r.Group("/admin", middleware.RoleMiddleware(model.Admin))
	{
		admin.PATCH("/users/:id/role", c.user.UpdateRole)
	}
}
