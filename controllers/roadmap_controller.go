package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coachroadmap/backend/services"
)

// ingestion requests carry large plans plus external store/AI round trips
const ingestTimeout = 120 * time.Second

// reason strips the sentinel prefix so callers see the specific message
// ("coach_email or coach_id is required", "Client not found", ...).
func reason(err error, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": reason(err, services.ErrInvalidFormat)})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": reason(err, services.ErrNotFound)})
	case errors.Is(err, services.ErrCredentialConfig):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Identity provider configuration error", "details": err.Error()})
	case errors.Is(err, services.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Service misconfigured", "details": err.Error()})
	case errors.Is(err, services.ErrProvisioning):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Account provisioning failed", "details": err.Error()})
	default:
		log.Printf("roadmap: unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid roadmap format", "details": "empty or unreadable body"})
		return nil, false
	}
	return body, true
}

// AddRoadmap is the create-or-reuse ingestion endpoint.
func AddRoadmap(p *services.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readBody(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
		defer cancel()
		res, err := p.Add(ctx, body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
	}
}

// UpdateRoadmap rewrites the active engagement of an existing client.
func UpdateRoadmap(p *services.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readBody(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
		defer cancel()
		res, err := p.Update(ctx, body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
	}
}

// NewCycleRoadmap opens a subsequent coaching cycle for an existing pair.
func NewCycleRoadmap(p *services.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readBody(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
		defer cancel()
		res, err := p.NewCycle(ctx, body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
	}
}

// Health is the unauthenticated liveness endpoint.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "service": "roadmap-sync", "time": time.Now().UTC()})
	}
}
