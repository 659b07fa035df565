package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coachroadmap/backend/services"
)

type BlockUserRequest struct {
	Email   string `json:"email"`
	Blocked *bool  `json:"blocked"`
}

// BlockUser toggles the account ban for a profile, by email. Omitting
// "blocked" defaults to blocking.
func BlockUser(p *services.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BlockUserRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email is required"})
			return
		}
		blocked := true
		if req.Blocked != nil {
			blocked = *req.Blocked
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		profile, err := p.SetBlocked(ctx, req.Email, blocked)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user_id": profile.ID, "blocked": profile.Blocked})
	}
}
