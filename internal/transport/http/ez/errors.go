package ez

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"wwreviews/internal/domain"
	"wwreviews/internal/repo"
	resp "wwreviews/internal/transport/http/response"
)

// 统一错误对象（配合 resp.ErrorWith）
type AErr struct {
	Code int
	Msg  string
	Data any // 字段错误 {"field": ["msg"]}
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error       { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error     { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error        { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error         { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error         { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func MethodNotAllowed(msg string) error { return &AErr{Code: resp.CodeMethodNotAllowed, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromError 把 domain / gorm / 绑定错误映射成 AErr
func FromError(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &AErr{Code: resp.CodeBadRequest, Msg: ve.Error(), Data: ve.Fields, Err: err}
	}
	var fe validator.ValidationErrors
	if errors.As(err, &fe) {
		fields := fieldErrors(fe)
		return &AErr{Code: resp.CodeBadRequest, Msg: fields.Error(), Data: fields.Fields, Err: err}
	}
	var de *domain.DeniedError
	if errors.As(err, &de) {
		return &AErr{Code: resp.CodeUnauthorized, Msg: de.Msg, Err: err}
	}
	var (
		syn *json.SyntaxError
		typ *json.UnmarshalTypeError
		big *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typ):
		f := domain.NewValidationError(typ.Field, "Incorrect type.")
		return &AErr{Code: resp.CodeBadRequest, Msg: f.Error(), Data: f.Fields, Err: err}
	case errors.As(err, &syn):
		return &AErr{Code: resp.CodeBadRequest, Msg: "JSON parse error", Err: err}
	case errors.As(err, &big):
		return &AErr{Code: resp.CodeBadRequest, Msg: "request body too large", Err: err}
	case errors.Is(err, domain.ErrStateMismatch):
		f := domain.NewValidationError("state", "state does not match.")
		return &AErr{Code: resp.CodeBadRequest, Msg: f.Error(), Data: f.Fields, Err: err}
	case errors.Is(err, domain.ErrUnauthorized):
		return &AErr{Code: resp.CodeUnauthorized, Msg: "Authentication credentials were not provided.", Err: err}
	case errors.Is(err, domain.ErrNotPermitted):
		return &AErr{Code: resp.CodeUnauthorized, Msg: "You do not have permission to perform this action.", Err: err}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return &AErr{Code: resp.CodeNotFound, Msg: "Not found.", Err: err}
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return &AErr{Code: resp.CodeMethodNotAllowed, Err: err}
	case errors.Is(err, domain.ErrConflict), repo.IsDupKey(err):
		return &AErr{Code: resp.CodeConflict, Msg: conflictMsg(err), Err: err}
	case errors.Is(err, domain.ErrUpstream):
		return &AErr{Code: resp.CodeBadGateway, Msg: "upstream provider failure", Err: err}
	}
	return &AErr{Code: resp.CodeServerError, Err: err}
}

func conflictMsg(err error) string {
	if errors.Is(err, domain.ErrConflict) {
		return err.Error()
	}
	return "The fields must make a unique set."
}

// WriteError 写错误响应；5xx 记到 c.Errors 由访问日志输出
func WriteError(c *gin.Context, err error) {
	ae := FromError(err)
	if ae.Code >= 500 {
		_ = c.Error(err)
	}
	resp.Write(c, resp.ErrorWith(ae.Code, ae.Msg, ae.Data))
}
