package errors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalid             = errors.New("invalid")
	ErrTooMany             = errors.New("too many requests")
	ErrInternal            = errors.New("internal")
	ErrExtraction          = errors.New("extraction failed")
	ErrUnsupportedFile     = errors.New("unsupported file type")
	ErrDegenerateInput     = errors.New("insufficient text content")
	ErrAnalyzerUnavailable = errors.New("analyzer unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtraction) || errors.Is(err, ErrUnsupportedFile)
}
