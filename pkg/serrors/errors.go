package serrors

import (
	"errors"
	"fmt"
)

// BaseError is a coded error that can be rendered by API layers without string matching.
type BaseError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	LocaleKey string `json:"locale_key,omitempty"`
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

// Is matches any BaseError carrying the same code.
func (e *BaseError) Is(target error) bool {
	var t *BaseError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrapf attaches context to err while keeping the code reachable through errors.As.
func (e *BaseError) Wrapf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

// Code extracts the code of the first BaseError in the chain.
func Code(err error) (string, bool) {
	var base *BaseError
	if errors.As(err, &base) {
		return base.Code, true
	}
	return "", false
}
