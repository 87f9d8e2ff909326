package response

import (
	"net/http"

	"eth-gateway/pkg/errno"

	"github.com/gin-gonic/gin"
)

// Response defines the standard JSON structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error returns an error response; HTTP 状态码按错误类型决定 (400 / 429 / 502 / 500)
func Error(c *gin.Context, err error) {
	code, msg := errno.Decode(err)
	c.AbortWithStatusJSON(errno.HTTPStatus(err), Response{
		Code:    code,
		Message: msg,
		Data:    gin.H{},
		Error:   msg,
	})
}
