package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"taskapi/internal/apierr"
	"taskapi/internal/auth"
	"taskapi/internal/cache"
	"taskapi/internal/config"
	"taskapi/internal/handlers"
	"taskapi/internal/repo"
	"taskapi/internal/service"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.Use(apierr.Recovery(cfg.App.Debug))

	common := handlers.NewCommonHandler(cfg.App.Version)
	r.GET("/health", common.Health)
	r.GET("/version", common.Version)

	api := r.Group(cfg.API.Prefix)

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL.Duration(), cfg.JWT.RefreshTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(tokens, userSvc)
	registerAuthRoutes(api, authHandler)

	var taskCache *cache.TaskCache
	if rdb != nil {
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	}
	taskRepo := repo.NewPGTaskRepo(db)
	taskSvc := service.NewTaskService(taskRepo, taskCache)
	taskHandler := handlers.NewTaskHandler(taskSvc)

	tagHandler := handlers.NewTagHandler(repo.NewPGTagRepo(db))
	categoryHandler := handlers.NewCategoryHandler(repo.NewPGCategoryRepo(db))

	protected := api.Group("", auth.RequireAuth(tokens))
	registerTaskRoutes(api, protected, taskHandler)
	registerTagRoutes(api, protected, tagHandler)
	registerCategoryRoutes(api, protected, categoryHandler)
}

// Reads are public, mutations require a valid access token.
func registerTaskRoutes(api, protected *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.GetByID)
	protected.POST("/tasks", h.Create)
	protected.PUT("/tasks/:id", h.Update)
	protected.PATCH("/tasks/:id", h.Update)
	protected.DELETE("/tasks/:id", h.Delete)
}

func registerTagRoutes(api, protected *gin.RouterGroup, h *handlers.TagHandler) {
	api.GET("/tags", h.List)
	api.GET("/tags/:id", h.GetByID)
	protected.POST("/tags", h.Create)
	protected.PUT("/tags/:id", h.Update)
	protected.PATCH("/tags/:id", h.Update)
	protected.DELETE("/tags/:id", h.Delete)
}

func registerCategoryRoutes(api, protected *gin.RouterGroup, h *handlers.CategoryHandler) {
	api.GET("/categories", h.List)
	api.GET("/categories/:id", h.GetByID)
	protected.POST("/categories", h.Create)
	protected.PUT("/categories/:id", h.Update)
	protected.PATCH("/categories/:id", h.Update)
	protected.DELETE("/categories/:id", h.Delete)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/obtain", h.Obtain)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/verify", h.Verify)
}
