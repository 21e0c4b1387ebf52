package errors

// Common HTTP error constructors providing better semantic meaning and consistency

func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(401, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(403, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(404, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(409, format, args...)
}

func TooManyRequests(format string, args ...any) *Error {
	return New(429, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(503, format, args...)
}

func GatewayTimeout(format string, args ...any) *Error {
	return New(504, format, args...)
}

// Convenience constructors with metadata

func UnauthorizedWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return Unauthorized(format, args...).WithMetadata(metadata)
}

func TooManyRequestsWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return TooManyRequests(format, args...).WithMetadata(metadata)
}
