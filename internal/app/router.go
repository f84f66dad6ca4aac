package app

import (
	"learnpath_backend/docs"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/middleware"
	"learnpath_backend/internal/model"
	"learnpath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 浏览类：可选认证，游客只能看到公开内容，登录用户还能看到自己的私有路径
		public.GET("/learning-paths", c.learningPath.ListPublic)
		public.GET("/learning-paths/:id", middleware.TryAuthMiddleware(a.Config), c.learningPath.Get)
		public.GET("/resources", c.resource.List)
		public.GET("/resources/:id", middleware.TryAuthMiddleware(a.Config), c.resource.Get)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	// 用户资料
	rg.GET("/users/profile", c.user.GetProfile)
	rg.PUT("/users/profile", c.user.UpdateProfile)
	rg.GET("/users/dashboard", c.user.GetDashboard)

	// 报名与进度
	rg.POST("/learning-paths/:id/enroll", c.learningPath.Enroll)
	rg.GET("/learning-paths/my-paths", c.learningPath.ListMine)

	rg.PUT("/progress/resource/:resourceId", c.progress.Upsert)
	rg.GET("/progress", c.progress.GetDashboard)
	rg.GET("/progress/learning-path/:id", c.progress.GetPathProgress)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		instructor.POST("/learning-paths", c.learningPath.Create)
		instructor.PUT("/learning-paths/:id", c.learningPath.Update)
		instructor.DELETE("/learning-paths/:id", c.learningPath.Delete)

		instructor.POST("/resources", c.resource.Create)
		instructor.PUT("/resources/:id", c.resource.Update)
		instructor.DELETE("/resources/:id", c.resource.Delete)
		instructor.PUT("/resources/reorder/:id", c.resource.Reorder)

		instructor.POST("/uploads/resource", c.upload.Upload)

		instructor.GET("/progress/instructor/learning-path/:id", c.progress.GetInstructorPathProgress)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)
		admin.PUT("/users/:id", c.user.UpdateRole)
	}
}
