package routes

import (
	"github.com/gin-gonic/gin"

	"coachroadmap/backend/config"
	"coachroadmap/backend/controllers"
	"coachroadmap/backend/middlewares"
	"coachroadmap/backend/services"
)

func Register(r *gin.Engine, cfg config.Config, p *services.Pipeline) {
	r.GET("/", controllers.Health())

	priv := r.Group("/")
	priv.Use(middlewares.Secret(cfg.ServiceSecret))
	priv.POST("add-roadmap", controllers.AddRoadmap(p))
	priv.PUT("update-roadmap", controllers.UpdateRoadmap(p))
	priv.POST("new-cycle-roadmap", controllers.NewCycleRoadmap(p))
	priv.POST("block-user", controllers.BlockUser(p))
	priv.GET("export-roadmap", controllers.ExportRoadmap(p))
}
