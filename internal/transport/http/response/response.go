package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes data as the bare JSON body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}

// ErrorWith adds diagnostic fields (raw model output, the offending value)
// next to the error message. Nil values are dropped.
func ErrorWith(c *gin.Context, httpStatus int, message string, extra gin.H) {
	body := gin.H{"error": message}
	for k, v := range extra {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		body[k] = v
	}
	c.JSON(httpStatus, body)
}
