package app

import (
	"github.com/gin-gonic/gin"

	"github.com/corvid-labs/taskline-backend/internal/handlers"
	"github.com/corvid-labs/taskline-backend/internal/middleware"
)

func wireRouter(cfg Config, resolver *ScopeResolver, authMW *middleware.AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/healthcheck", handlers.HealthCheck)

	api := r.Group("/api/v1")
	protected := api.Group("/")
	protected.Use(authMW.RequireAuth())
	{
		protected.POST("/tasks", resolver.Handle(func(s *RequestScope, c *gin.Context) {
			s.TaskHandler.Create(c)
		}))
		protected.GET("/tasks", resolver.Handle(func(s *RequestScope, c *gin.Context) {
			s.TaskHandler.List(c)
		}))
		protected.GET("/tasks/:id", resolver.Handle(func(s *RequestScope, c *gin.Context) {
			s.TaskHandler.Get(c)
		}))
		protected.PATCH("/tasks/:id", resolver.Handle(func(s *RequestScope, c *gin.Context) {
			s.TaskHandler.Update(c)
		}))
		protected.DELETE("/tasks/:id", resolver.Handle(func(s *RequestScope, c *gin.Context) {
			s.TaskHandler.Delete(c)
		}))
	}

	return r
}
