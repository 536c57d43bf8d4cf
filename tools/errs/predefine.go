package errs

// Error codes follow HTTP semantics so REST handlers can reuse them directly.
const (
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeBadPayload   = 400
	CodeResolution   = 500
)

var (
	ErrUnauthorized = NewCodeError(CodeUnauthorized, "unauthorized")
	ErrForbidden    = NewCodeError(CodeForbidden, "access denied")
	ErrBadPayload   = NewCodeError(CodeBadPayload, "malformed payload")
	ErrResolution   = NewCodeError(CodeResolution, "internal error")
)
