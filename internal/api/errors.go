package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error kinds returned alongside the human message so
// clients can branch without parsing strings.
const (
	kindValidation   = "validation"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindInternal     = "internal"
)

func kindForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return kindValidation
	case http.StatusUnauthorized:
		return kindUnauthorized
	case http.StatusForbidden:
		return kindForbidden
	case http.StatusNotFound:
		return kindNotFound
	case http.StatusConflict:
		return kindConflict
	default:
		return kindInternal
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message, "kind": kindForStatus(code)})
}
