package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess     = 0
	CodeParamError  = 400
	CodeServerError = 500
)

// 业务错误码
const (
	CodeBalanceNotEnough = 1003
	CodeAccountNotFound  = 1005
	CodeNoAccount        = 1006 // 没有任何账户可供操作
)

// RequestIDKey 中间件写入 gin.Context 的请求ID键
const RequestIDKey = "request_id"

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ListData 列表类接口的 data
type ListData struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      CodeSuccess,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

func List(c *gin.Context, list interface{}, total int) {
	Success(c, ListData{List: list, Total: total})
}

// Error 业务失败同样返回 HTTP 200，由 code 区分
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}

func BusinessError(c *gin.Context, code int, message string) {
	Error(c, code, message)
}

// Abort 中断后续处理并返回 500，用于 panic 恢复
func Abort(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Code:      CodeServerError,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}
