package response

import "net/http"

// 错误码直接复用 HTTP 状态码，成功为 0
const (
	CodeOK               = 0
	CodeBadRequest       = http.StatusBadRequest
	CodeUnauthorized     = http.StatusUnauthorized
	CodeForbidden        = http.StatusForbidden
	CodeNotFound         = http.StatusNotFound
	CodeMethodNotAllowed = http.StatusMethodNotAllowed
	CodeConflict         = http.StatusConflict
	CodeTooMany          = http.StatusTooManyRequests
	CodeServerError      = http.StatusInternalServerError
	CodeBadGateway       = http.StatusBadGateway
	CodeUnavailable      = http.StatusServiceUnavailable
	CodeTimeout          = http.StatusGatewayTimeout
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:               "OK",
	CodeBadRequest:       "Bad Request",
	CodeUnauthorized:     "Unauthorized",
	CodeForbidden:        "Forbidden",
	CodeNotFound:         "Not found.",
	CodeMethodNotAllowed: "Method not allowed.",
	CodeConflict:         "Conflict",
	CodeTooMany:          "Too Many Requests",
	CodeServerError:      "Internal Server Error",
	CodeBadGateway:       "Bad Gateway",
	CodeUnavailable:      "Service Unavailable",
	CodeTimeout:          "Timeout",
}
