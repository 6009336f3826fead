package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Error string `json:"error"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, errorBody{Error: message})
}

func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: message})
}
