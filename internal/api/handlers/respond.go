package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divesh330/timevault/internal/errs"
)

// respondError writes the JSON error response for a service-layer error.
// Unclassified errors are reported as a generic 500 so internals do not leak.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := errs.KindOf(err)
	status := errs.HTTPStatus(kind)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
