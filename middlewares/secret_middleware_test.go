package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func secretRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Secret(secret))
	r.POST("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestSecretMiddleware(t *testing.T) {
	cases := []struct {
		name       string
		configured string
		header     string
		want       int
	}{
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong secret", "s3cret", "nope", http.StatusForbidden},
		{"matching secret", "s3cret", "s3cret", http.StatusOK},
		{"server secret unset", "", "anything", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/probe", nil)
			if tc.header != "" {
				req.Header.Set(SecretHeader, tc.header)
			}
			w := httptest.NewRecorder()
			secretRouter(tc.configured).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
