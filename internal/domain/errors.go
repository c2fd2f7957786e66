package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("authentication credentials were not provided")
	ErrNotPermitted     = errors.New("not permitted")
	ErrConflict         = errors.New("conflict")
	ErrStateMismatch    = errors.New("state does not match")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrUpstream         = errors.New("upstream provider failure")
)

// DeniedError 权限拒绝，Msg 原样返回给调用方
type DeniedError struct{ Msg string }

func (e *DeniedError) Error() string { return e.Msg }
func (e *DeniedError) Unwrap() error { return ErrNotPermitted }

func Denied(verb, resource string) error {
	return &DeniedError{Msg: fmt.Sprintf("You are not authorized to %s a '%s' resource.", verb, resource)}
}

// ValidationError 字段错误，输出为 {"field": ["msg"]}
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return strings.Join(parts, ", ")
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
