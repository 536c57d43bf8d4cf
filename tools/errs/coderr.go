package errs

import (
	stderrors "errors"
	"strconv"
	"strings"
)

// CodeError is the error currency of the gateway: a stable code, a short
// message safe to send to clients, and an optional server-side detail.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e *CodeError) clone() *CodeError {
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: e.Detail}
}

// WithDetail returns a copy carrying extra detail; the original sentinel
// stays untouched so errors.Is keeps working against it.
func (e *CodeError) WithDetail(detail string) *CodeError {
	c := e.clone()
	if c.Detail == "" {
		c.Detail = detail
	} else {
		c.Detail += ", " + detail
	}
	return c
}

// Is matches by code, so a detailed copy compares equal to its sentinel.
func (e *CodeError) Is(target error) bool {
	var ce *CodeError
	if !stderrors.As(target, &ce) {
		return false
	}
	return e.Code == ce.Code
}

// Code extracts the CodeError code from an error chain, or 0.
func Code(err error) int {
	var ce *CodeError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// ClientMsg returns the message a client may see. Anything that is not a
// CodeError collapses to the generic resolution-failure message so internal
// detail never leaks onto the wire.
func ClientMsg(err error) string {
	var ce *CodeError
	if stderrors.As(err, &ce) {
		return ce.Msg
	}
	return ErrResolution.Msg
}
