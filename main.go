package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"coachroadmap/backend/config"
	"coachroadmap/backend/database"
	"coachroadmap/backend/routes"
	"coachroadmap/backend/services"
)

// roadmap payloads can reach tens of megabytes for large plans
const maxBodyBytes = 50 << 20

func main() {
	cfg := config.Load()
	database.Connect(cfg.DatabaseURL)
	database.EnsureSchema()

	store := database.NewStore(database.Pool)
	auth := services.NewAuthAdmin(cfg)
	mailer := services.NewResendMailer(cfg)
	pipeline := services.NewPipeline(cfg, store, auth, mailer)

	r := gin.Default()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Service-Secret")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		c.Next()
	})
	routes.Register(r, cfg, pipeline)
	log.Printf("server on :%s", cfg.Port)
	r.Run(":" + cfg.Port)
}
