package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Data writes a 200 response in the {"success": true, "data": ...} envelope the
// mobile client expects.
func Data(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, gin.H{"success": true, "data": data})
}
